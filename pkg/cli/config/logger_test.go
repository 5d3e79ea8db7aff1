package config_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/armtoolchain/pkg/cli/config"
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
)

func TestLogger_Configure_Level(t *testing.T) {
	enabled := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for level, want := range enabled {
		t.Run(level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := (&config.Logger{Level: level, Format: "text", Output: &buf}).Configure()
			gt.NoError(t, err)
			gt.True(t, logger.Enabled(t.Context(), want))
			gt.False(t, logger.Enabled(t.Context(), want-1))
		})
	}

	for _, level := range []string{"", "verbose", "trace"} {
		t.Run("rejects "+level, func(t *testing.T) {
			_, err := (&config.Logger{Level: level, Format: "text"}).Configure()
			gt.True(t, errors.Is(err, types.ErrInvalidConfig))
		})
	}
}

func TestLogger_Configure_Format(t *testing.T) {
	var buf bytes.Buffer
	logger, err := (&config.Logger{Level: "info", Format: "json", Output: &buf}).Configure()
	gt.NoError(t, err)
	logger.Info("packed", slog.String("archive", "dist/tc.tar.xz"))

	var record map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	gt.Equal(t, record["msg"], any("packed"))
	gt.Equal(t, record["archive"], any("dist/tc.tar.xz"))

	for _, format := range []string{"text", "console", ""} {
		buf.Reset()
		logger, err := (&config.Logger{Level: "info", Format: format, Output: &buf}).Configure()
		gt.NoError(t, err)
		logger.Info("packed")
		gt.String(t, buf.String()).Contains("packed")
	}

	_, err = (&config.Logger{Level: "info", Format: "xml"}).Configure()
	gt.True(t, errors.Is(err, types.ErrInvalidConfig))
}

func TestLogger_IsJSON(t *testing.T) {
	gt.True(t, (&config.Logger{Format: "JSON"}).IsJSON())
	gt.False(t, (&config.Logger{Format: "console"}).IsJSON())
}

func TestLogger_Flags(t *testing.T) {
	var names []string
	for _, f := range (&config.Logger{}).Flags() {
		if named, ok := f.(interface{ Names() []string }); ok {
			names = append(names, named.Names()[0])
		}
	}
	gt.Equal(t, strings.Join(names, ","), "log-level,log-format")
}

func TestLogger_Flags_Defaults(t *testing.T) {
	var cfg config.Logger
	cmd := &cli.Command{
		Name:   "test",
		Flags:  cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error { return nil },
	}
	gt.NoError(t, cmd.Run(t.Context(), []string{"test"}))
	gt.Equal(t, cfg.Level, "info")
	gt.Equal(t, cfg.Format, "console")
}

func TestLogger_Configure_RedactsSecrets(t *testing.T) {
	type credentials struct {
		User string
		DSN  string `masq:"secret"`
	}

	for _, format := range []string{"text", "json", "console"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := (&config.Logger{Level: "info", Format: format, Output: &buf}).Configure()
			gt.NoError(t, err)

			logger.Info("configured", slog.Any("credentials", credentials{
				User: "builder",
				DSN:  "https://public@sentry.example.com/1",
			}))

			out := buf.String()
			gt.String(t, out).Contains("configured")
			gt.False(t, strings.Contains(out, "public@sentry.example.com"))
		})
	}
}
