package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Policy holds the path of the category policy file
type Policy struct {
	Path string
}

type policyFile struct {
	Image *categoryOverride `toml:"image"`
	Video *categoryOverride `toml:"video"`
	Audio *categoryOverride `toml:"audio"`
	Text  *categoryOverride `toml:"text"`
}

type categoryOverride struct {
	MaxSizeMB  *float64 `toml:"max_size_mb"`
	MIMETypes  []string `toml:"mime_types"`
	Extensions []string `toml:"extensions"`
}

// Flags returns CLI flags for policy configuration
func (c *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-file",
			Usage:       "TOML file overriding size limits and allowed types per category",
			Destination: &c.Path,
			Sources:     cli.EnvVars("DEEPCHECK_POLICY_FILE"),
		},
	}
}

// Load returns the default policy with the file's overrides applied
func (c *Policy) Load() (*model.Policy, error) {
	policy := model.DefaultPolicy()
	if c.Path == "" {
		return policy, nil
	}

	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", c.Path))
	}

	var file policyFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy file", goerr.V("path", c.Path))
	}

	overrides := map[model.MediaCategory]*categoryOverride{
		model.CategoryImage: file.Image,
		model.CategoryVideo: file.Video,
		model.CategoryAudio: file.Audio,
		model.CategoryText:  file.Text,
	}
	for category, o := range overrides {
		if o == nil {
			continue
		}
		rule := policy.Rule(category)

		if o.MaxSizeMB != nil {
			if *o.MaxSizeMB <= 0 {
				return nil, goerr.New("max_size_mb must be positive",
					goerr.V("path", c.Path),
					goerr.V("category", category),
				)
			}
			rule.MaxSize = int64(*o.MaxSizeMB * float64(model.MB))
		}
		if o.MIMETypes != nil {
			rule.MIMETypes = lower(o.MIMETypes)
		}
		if o.Extensions != nil {
			rule.Extensions = lower(o.Extensions)
		}
	}

	return policy, nil
}

func lower(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
