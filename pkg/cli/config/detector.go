package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/deepcheck/pkg/infra/realitydefender"
	"github.com/urfave/cli/v3"
)

// Detector holds the detection API configuration
type Detector struct {
	APIKey       string `masq:"secret"`
	BaseURL      string
	PollInterval time.Duration
	MaxAttempts  int
}

// Flags returns CLI flags for the detection API
func (c *Detector) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "detector-api-key",
			Usage:       "API key of the deepfake detection service",
			Required:    true,
			Destination: &c.APIKey,
			Sources:     cli.EnvVars("DEEPCHECK_DETECTOR_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "detector-base-url",
			Usage:       "Base URL of the deepfake detection service",
			Value:       realitydefender.DefaultBaseURL,
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("DEEPCHECK_DETECTOR_BASE_URL"),
		},
		&cli.DurationFlag{
			Name:        "detector-poll-interval",
			Usage:       "Interval between result polls",
			Value:       realitydefender.DefaultPollInterval,
			Destination: &c.PollInterval,
			Sources:     cli.EnvVars("DEEPCHECK_DETECTOR_POLL_INTERVAL"),
		},
		&cli.IntFlag{
			Name:        "detector-max-attempts",
			Usage:       "Maximum number of result polls",
			Value:       realitydefender.DefaultMaxAttempts,
			Destination: &c.MaxAttempts,
			Sources:     cli.EnvVars("DEEPCHECK_DETECTOR_MAX_ATTEMPTS"),
		},
	}
}

// New creates the detection API client
func (c *Detector) New() *realitydefender.Client {
	return realitydefender.New(c.APIKey,
		realitydefender.WithBaseURL(c.BaseURL),
		realitydefender.WithPollInterval(c.PollInterval),
		realitydefender.WithMaxAttempts(c.MaxAttempts),
	)
}

// LogValue hides the API key
func (c Detector) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", c.BaseURL),
		slog.Duration("poll_interval", c.PollInterval),
		slog.Int("max_attempts", c.MaxAttempts),
	)
}
