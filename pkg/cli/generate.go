package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/armtoolchain/pkg/cli/config"
	"github.com/m-mizutani/armtoolchain/pkg/infra/archive"
	"github.com/m-mizutani/armtoolchain/pkg/infra/fetch"
	"github.com/m-mizutani/armtoolchain/pkg/usecase"
	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
)

// cmdGenerate runs the pipeline. Its flags are declared on the root command.
func cmdGenerate(loggerCfg *config.Logger, pipelineCfg *config.Pipeline, storageCfg *config.Storage) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   "Fetch, extract, prune and repackage every configured toolchain",
		Action: func(ctx context.Context, c *cli.Command) error {
			return runGenerate(ctx, pipelineCfg, storageCfg, loggerCfg.IsJSON())
		},
	}
}

func runGenerate(ctx context.Context, pipelineCfg *config.Pipeline, storageCfg *config.Storage, jsonLogs bool) error {
	runID := uuid.NewString()
	logger := logging.From(ctx).With(slog.String("run_id", runID))
	ctx = logging.With(ctx, logger)

	cfg, err := pipelineCfg.Build()
	if err != nil {
		return err
	}

	// A redrawn bar would corrupt machine readable output
	if jsonLogs && (pipelineCfg.Progress == "" || pipelineCfg.Progress == "bar") {
		pipelineCfg.Progress = "log"
	}
	reporter, err := pipelineCfg.Reporter(logger)
	if err != nil {
		return err
	}

	opts := []usecase.GeneratorOption{usecase.WithRunID(runID)}
	if storageCfg.Enabled() {
		publisher, err := storageCfg.Configure(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to configure publisher")
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close publisher", slog.Any("error", err))
			}
		}()
		opts = append(opts, usecase.WithPublisher(publisher))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator := usecase.NewGenerator(
		cfg,
		fetch.New(fetch.WithReporter(reporter)),
		archive.NewExtractor(),
		archive.NewPackager(),
		opts...,
	)

	logger.Info("Starting toolchain generation",
		slog.Any("config", cfg),
		slog.Bool("publish", storageCfg.Enabled()),
	)

	started := time.Now()
	report, err := generator.Run(ctx)
	if report != nil {
		logger.Info("Toolchain generation summary",
			slog.Int("processed", len(report.Results)),
			slog.Int("failed", len(report.Failures())),
			slog.Int("configured", len(cfg.Toolchains)),
			slog.Duration("elapsed", time.Since(started)),
		)
	}
	return err
}
