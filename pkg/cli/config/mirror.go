package config

import "github.com/urfave/cli/v3"

// Mirror holds local mirror server configuration
type Mirror struct {
	Addr string
	Dir  string
}

// Flags returns CLI flags for mirror server configuration
func (c *Mirror) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_MIRROR_ADDR"),
		},
		&cli.StringFlag{
			Name:        "dir",
			Usage:       "Directory holding toolchain archives",
			Value:       ".",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_MIRROR_DIR"),
		},
	}
}
