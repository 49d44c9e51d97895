package config

import (
	"time"

	"github.com/m-mizutani/deepcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Client holds configuration of the analyze command
type Client struct {
	Endpoint string
	Timeout  time.Duration
	Detail   bool
	NoColor  bool
}

// Flags returns CLI flags for the analysis client
func (c *Client) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "endpoint",
			Usage:       "Base URL of the analysis server",
			Value:       "http://127.0.0.1:5000",
			Destination: &c.Endpoint,
			Sources:     cli.EnvVars("DEEPCHECK_ENDPOINT"),
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Maximum time to wait for one analysis",
			Value:       usecase.DefaultAnalysisTimeout,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("DEEPCHECK_TIMEOUT"),
		},
		&cli.BoolFlag{
			Name:        "detail",
			Usage:       "Show the per-model breakdown",
			Destination: &c.Detail,
		},
		&cli.BoolFlag{
			Name:        "no-color",
			Usage:       "Disable colored output",
			Destination: &c.NoColor,
			Sources:     cli.EnvVars("NO_COLOR"),
		},
	}
}
