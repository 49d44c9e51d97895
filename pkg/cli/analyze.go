package cli

import (
	"context"
	"errors"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gabriel-vasile/mimetype"
	"github.com/m-mizutani/deepcheck/pkg/cli/config"
	"github.com/m-mizutani/deepcheck/pkg/controller/terminal"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/deepcheck/pkg/infra/analysis"
	"github.com/m-mizutani/deepcheck/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdAnalyze() *cli.Command {
	var (
		clientCfg config.Client
		policyCfg config.Policy
	)

	flags := append(clientCfg.Flags(), policyCfg.Flags()...)

	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Upload a file to the analysis server and print the verdict",
		ArgsUsage: "FILE...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("no file given")
			}

			policy, err := policyCfg.Load()
			if err != nil {
				return err
			}

			candidates := make([]*model.UploadCandidate, 0, len(paths))
			for _, path := range paths {
				candidate, err := loadCandidate(path)
				if err != nil {
					return err
				}
				candidates = append(candidates, candidate)
			}

			var viewOpts []terminal.Option
			if clientCfg.NoColor {
				viewOpts = append(viewOpts, terminal.WithoutColor())
			}

			ctrl := usecase.NewUploadController(
				analysis.NewClient(clientCfg.Endpoint),
				usecase.WithView(terminal.New(os.Stdout, viewOpts...)),
				usecase.WithPolicy(policy),
				usecase.WithTimeout(clientCfg.Timeout),
			)
			if clientCfg.Detail {
				ctrl.ToggleDetail(ctx)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := ctrl.Acquire(ctx, model.SourcePicker, candidates); err != nil {
				if errors.Is(err, usecase.ErrBusy) {
					return nil
				}
				return err
			}
			return nil
		},
	}
}

// loadCandidate reads the file and declares its type from the extension, then from its content
func loadCandidate(path string) (*model.UploadCandidate, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", path))
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = mimetype.Detect(content).String()
	}

	return model.NewUploadCandidate(filepath.Base(path), mimeType, content), nil
}
