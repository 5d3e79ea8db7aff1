package console

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/armtoolchain/pkg/domain/interfaces"
	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
)

// LogReporter reports transfers as structured log records.
// Chunk updates are logged at debug level.
type LogReporter struct {
	logger *slog.Logger
}

var _ interfaces.ProgressReporter = (*LogReporter)(nil)

// NewLogReporter creates a reporter writing to logger
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Begin(name string, expected int64) {
	r.logger.Info("Transfer started", "name", name, "expected_bytes", expected)
}

func (r *LogReporter) Advance(p model.Progress) {
	if !r.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	r.logger.Debug("Transfer progress",
		"name", p.Name,
		"downloaded_bytes", p.Downloaded,
		"expected_bytes", p.Expected,
		"chunk", p.Chunks,
		"ratio", p.Ratio(),
	)
}

func (r *LogReporter) End(name string, err error) {
	if err != nil {
		r.logger.Error("Transfer failed", "name", name, "error", err)
		return
	}
	r.logger.Info("Transfer finished", "name", name)
}

func (r *LogReporter) Skip(name, reason string) {
	r.logger.Info("Transfer skipped", "name", name, "reason", reason)
}

// Nop discards all progress
type Nop struct{}

var _ interfaces.ProgressReporter = Nop{}

func (Nop) Begin(string, int64)    {}
func (Nop) Advance(model.Progress) {}
func (Nop) End(string, error)      {}
func (Nop) Skip(string, string)    {}
