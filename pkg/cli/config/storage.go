package config

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/armtoolchain/pkg/infra/storage"
)

// Storage holds Cloud Storage publishing configuration
type Storage struct {
	Bucket   string
	Prefix   string
	Endpoint string
}

// Flags returns CLI flags for Cloud Storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Upload packaged archives to this Cloud Storage bucket",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object name prefix for uploaded archives",
			Destination: &c.Prefix,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_GCS_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "gcs-endpoint",
			Usage:       "Cloud Storage endpoint, e.g. an emulator (disables authentication)",
			Destination: &c.Endpoint,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_GCS_ENDPOINT"),
		},
	}
}

// Enabled reports whether publishing is configured
func (c *Storage) Enabled() bool {
	return c.Bucket != ""
}

// Configure creates the publisher. Callers must Close it.
func (c *Storage) Configure(ctx context.Context) (*storage.Publisher, error) {
	return storage.New(ctx, c.Bucket, c.Prefix, c.Endpoint)
}
