package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/armtoolchain/pkg/domain/interfaces"
	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
	"github.com/m-mizutani/armtoolchain/pkg/utils/safe"
)

type generatorUseCase struct {
	cfg       *model.Config
	runID     string
	fetcher   interfaces.Fetcher
	extractor interfaces.Extractor
	pruner    interfaces.PrunerUseCase
	packager  interfaces.Packager
	publisher interfaces.Publisher
}

// GeneratorOption is a functional option for the generator
type GeneratorOption func(*generatorUseCase)

// WithPublisher uploads every packaged archive
func WithPublisher(publisher interfaces.Publisher) GeneratorOption {
	return func(uc *generatorUseCase) {
		uc.publisher = publisher
	}
}

// WithPruner replaces the allow-list pruner built from the configuration
func WithPruner(pruner interfaces.PrunerUseCase) GeneratorOption {
	return func(uc *generatorUseCase) {
		uc.pruner = pruner
	}
}

// WithRunID tags the report and every log line of the run
func WithRunID(id string) GeneratorOption {
	return func(uc *generatorUseCase) {
		uc.runID = id
	}
}

// NewGenerator creates the toolchain generation pipeline
func NewGenerator(
	cfg *model.Config,
	fetcher interfaces.Fetcher,
	extractor interfaces.Extractor,
	packager interfaces.Packager,
	opts ...GeneratorOption,
) interfaces.GeneratorUseCase {
	uc := &generatorUseCase{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		pruner:    NewPruner(),
		packager:  packager,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run processes every configured toolchain in order, one at a time
func (uc *generatorUseCase) Run(ctx context.Context) (*model.RunReport, error) {
	if err := uc.cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	if uc.runID != "" {
		logger = logger.With("run_id", uc.runID)
		ctx = logging.With(ctx, logger)
	}

	if err := os.MkdirAll(uc.cfg.DistDir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create dist directory", goerr.V("dir", uc.cfg.DistDir))
	}

	report := &model.RunReport{RunID: uc.runID}
	var errs []error

	for i, tc := range uc.cfg.Toolchains {
		if err := ctx.Err(); err != nil {
			return report, goerr.Wrap(err, "generation interrupted")
		}

		logger.Info("Processing toolchain",
			"toolchain", string(tc),
			"index", i+1,
			"total", len(uc.cfg.Toolchains),
		)

		result := &model.StageResult{Toolchain: tc}
		report.Results = append(report.Results, result)

		start := time.Now()
		result.Err = safe.Run(ctx, func(ctx context.Context) error {
			return uc.process(ctx, tc, result)
		})
		result.Elapsed = time.Since(start)

		if result.Err == nil {
			logger.Info("Toolchain ready",
				"toolchain", string(tc),
				"archive", result.ArchivePath,
				"elapsed", result.Elapsed.String(),
			)
			continue
		}

		if uc.cfg.Policy == model.PolicyFailFast {
			return report, result.Err
		}

		logger.Error("Toolchain failed, continuing",
			"toolchain", string(tc),
			"error", result.Err,
		)
		errs = append(errs, result.Err)
	}

	if len(errs) > 0 {
		return report, goerr.Wrap(errors.Join(errs...), "some toolchains failed",
			goerr.V("failed", len(errs)),
			goerr.V("total", len(uc.cfg.Toolchains)),
		)
	}

	return report, nil
}

// process runs fetch, extract, prune, pack and publish for a single toolchain
func (uc *generatorUseCase) process(ctx context.Context, tc model.Toolchain, result *model.StageResult) error {
	archivePath := filepath.Join(uc.cfg.WorkDir, string(tc))
	toolchainDir := filepath.Join(uc.cfg.WorkDir, tc.Dir())

	skipped, err := uc.fetcher.Fetch(ctx, tc.URL(uc.cfg.BaseURL), archivePath)
	if err != nil {
		return err
	}
	result.FetchSkipped = skipped

	skipped, err = uc.extractor.Extract(ctx, archivePath, toolchainDir, tc.Format())
	if err != nil {
		return err
	}
	result.ExtractSkipped = skipped

	removed, err := uc.pruner.Prune(ctx, toolchainDir, model.NewPrunePlan(tc, uc.cfg))
	if err != nil {
		return goerr.Wrap(err, "failed to prune toolchain", goerr.V("dir", toolchainDir))
	}
	result.Removed = removed

	packaged, err := uc.packager.Pack(ctx, toolchainDir, uc.cfg.DistDir)
	if err != nil {
		return err
	}
	result.ArchivePath = packaged

	if uc.publisher == nil {
		return nil
	}

	object, err := uc.publisher.Publish(ctx, packaged)
	if err != nil {
		return err
	}
	result.PublishedObject = object

	return nil
}
