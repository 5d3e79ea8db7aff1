package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/armtoolchain/pkg/cli/config"
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg   config.Logger
		sentryCfg   config.Sentry
		pipelineCfg config.Pipeline
		storageCfg  config.Storage
		logger      *slog.Logger
	)

	// Flags are inherited by subcommands, so pipeline settings apply to both
	// `armtoolchain` and `armtoolchain generate`
	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, pipelineCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	app := &cli.Command{
		Name:    "armtoolchain",
		Usage:   "Download, trim and repackage ARM GNU toolchains",
		Version: types.Version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			if err := sentryCfg.Configure(logger); err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			return logging.With(ctx, logger), nil
		},
		// Running without a subcommand is the same as `generate`
		Action: func(ctx context.Context, c *cli.Command) error {
			return runGenerate(ctx, &pipelineCfg, &storageCfg, loggerCfg.IsJSON())
		},
		Commands: []*cli.Command{
			cmdGenerate(&loggerCfg, &pipelineCfg, &storageCfg),
			cmdMirror(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		sentryCfg.Report(err)

		if errors.Is(err, types.ErrDownloadFailed) {
			fmt.Fprintln(os.Stderr, "Failed to download files")
		}
		return err
	}

	return nil
}
