package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/deepcheck/pkg/cli/config"
	controller "github.com/m-mizutani/deepcheck/pkg/controller/http"
	"github.com/m-mizutani/deepcheck/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg   config.Server
		detectorCfg config.Detector
		storageCfg  config.Storage
		sentryCfg   config.Sentry
		policyCfg   config.Policy
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, detectorCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the analysis HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting deepcheck server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("detector", detectorCfg),
				slog.Any("storage", storageCfg),
			)

			sentryEnabled, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			if sentryEnabled {
				logger.Info("Sentry error reporting enabled", slog.String("env", sentryCfg.Environment))
			}

			policy, err := policyCfg.Load()
			if err != nil {
				return err
			}

			records, closeRecords, err := storageCfg.NewRecordRepository(ctx)
			if err != nil {
				return err
			}
			defer closeRecords()

			archive, closeArchive, err := storageCfg.NewArchive(ctx)
			if err != nil {
				return err
			}
			defer closeArchive()

			// Create use cases
			analyzeOpts := []usecase.AnalyzeOption{
				usecase.WithRecordRepository(records),
				usecase.WithAnalyzePolicy(policy),
			}
			if archive != nil {
				analyzeOpts = append(analyzeOpts, usecase.WithArchive(archive))
			}
			analyzeUC := usecase.NewAnalyze(detectorCfg.New(), analyzeOpts...)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				analyzeUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithCORSOrigins(serverCfg.CORSOrigin...),
				controller.WithMaxUploadSize(maxUploadSize(policy.MaxSize())),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// maxUploadSize leaves room for the multipart envelope around the largest allowed file
func maxUploadSize(largestFile int64) int64 {
	return largestFile + 10<<20
}
