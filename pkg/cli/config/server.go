package config

import "github.com/urfave/cli/v3"

// Server holds server configuration
type Server struct {
	Addr       string
	CORSOrigin []string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "127.0.0.1:5000",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("DEEPCHECK_ADDR"),
		},
		&cli.StringSliceFlag{
			Name:        "cors-origin",
			Usage:       "Allowed CORS origin, can be repeated",
			Value:       []string{"*"},
			Destination: &c.CORSOrigin,
			Sources:     cli.EnvVars("DEEPCHECK_CORS_ORIGIN"),
		},
	}
}
