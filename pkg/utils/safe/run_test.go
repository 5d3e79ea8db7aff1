package safe_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
	"github.com/m-mizutani/armtoolchain/pkg/utils/safe"
)

func TestRun(t *testing.T) {
	t.Run("runs handler synchronously", func(t *testing.T) {
		executed := false
		err := safe.Run(context.Background(), func(ctx context.Context) error {
			executed = true
			return nil
		})
		gt.NoError(t, err)
		gt.True(t, executed)
	})

	t.Run("returns handler error", func(t *testing.T) {
		expected := errors.New("stage failed")
		err := safe.Run(context.Background(), func(ctx context.Context) error {
			return expected
		})
		gt.True(t, errors.Is(err, expected))
	})

	t.Run("recovers from panic", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))
		ctx := logging.With(context.Background(), logger)

		err := safe.Run(ctx, func(ctx context.Context) error {
			panic("test panic with stack")
		})

		gt.Error(t, err)
		logOutput := buf.String()
		gt.True(t, strings.Contains(logOutput, "panic in pipeline stage"))
		gt.True(t, strings.Contains(logOutput, "test panic with stack"))
		gt.True(t, strings.Contains(logOutput, "goroutine"))
	})

	t.Run("passes context through", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		ctx := logging.With(context.Background(), logger)

		err := safe.Run(ctx, func(ctx context.Context) error {
			logging.From(ctx).Info("inside stage")
			return nil
		})
		gt.NoError(t, err)
		gt.String(t, buf.String()).Contains("inside stage")
	})
}
