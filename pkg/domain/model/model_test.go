package model_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
)

func TestToolchain(t *testing.T) {
	tests := []struct {
		name      string
		toolchain model.Toolchain
		format    model.ArchiveFormat
		dir       string
		exe       string
	}{
		{
			name:      "windows zip",
			toolchain: "arm-gnu-toolchain-14.2.rel1-mingw-w64-x86_64-arm-none-eabi.zip",
			format:    model.FormatZip,
			dir:       "arm-gnu-toolchain-14.2.rel1-mingw-w64-x86_64-arm-none-eabi",
			exe:       ".exe",
		},
		{
			name:      "linux tar.xz",
			toolchain: "arm-gnu-toolchain-14.2.rel1-x86_64-arm-none-eabi.tar.xz",
			format:    model.FormatTarXz,
			dir:       "arm-gnu-toolchain-14.2.rel1-x86_64-arm-none-eabi",
			exe:       "",
		},
		{
			name:      "unknown",
			toolchain: "arm-gnu-toolchain.tar.bz2",
			format:    model.FormatUnknown,
			dir:       "arm-gnu-toolchain.tar.bz2",
			exe:       "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, tt.toolchain.Format(), tt.format)
			gt.Equal(t, tt.toolchain.Dir(), tt.dir)
			gt.Equal(t, tt.toolchain.ExeSuffix(), tt.exe)
		})
	}
}

func TestToolchain_URL(t *testing.T) {
	tc := model.Toolchain("arm-gnu-toolchain-14.2.rel1-aarch64-arm-none-eabi.tar.xz")
	gt.Equal(t, tc.URL(model.DefaultBaseURL),
		"https://developer.arm.com/-/media/Files/downloads/gnu/14.2.rel1/binrel/arm-gnu-toolchain-14.2.rel1-aarch64-arm-none-eabi.tar.xz")
}

func TestToolchain_Validate(t *testing.T) {
	gt.NoError(t, model.Toolchain("a.zip").Validate())
	gt.True(t, errors.Is(model.Toolchain("a.7z").Validate(), types.ErrUnsupportedFormat))
	gt.True(t, errors.Is(model.Toolchain(".tar.xz").Validate(), types.ErrInvalidConfig))
}

func TestConfig_Validate(t *testing.T) {
	gt.NoError(t, model.DefaultConfig().Validate())

	tests := []struct {
		name    string
		mutate  func(cfg *model.Config)
		wantErr error
	}{
		{"empty base URL", func(cfg *model.Config) { cfg.BaseURL = "" }, types.ErrInvalidConfig},
		{"no toolchain", func(cfg *model.Config) { cfg.Toolchains = nil }, types.ErrInvalidConfig},
		{"no arch", func(cfg *model.Config) { cfg.Archs = nil }, types.ErrInvalidConfig},
		{"no target", func(cfg *model.Config) { cfg.Target = "" }, types.ErrInvalidConfig},
		{"unknown policy", func(cfg *model.Config) { cfg.Policy = "retry" }, types.ErrInvalidConfig},
		{"unsupported archive", func(cfg *model.Config) {
			cfg.Toolchains = append(cfg.Toolchains, "toolchain.rar")
		}, types.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultConfig()
			tt.mutate(cfg)
			gt.True(t, errors.Is(cfg.Validate(), tt.wantErr))
		})
	}
}

func TestPrunePlan_KeepsArch(t *testing.T) {
	cfg := model.DefaultConfig()
	plan := model.NewPrunePlan(cfg.Toolchains[1], cfg)
	gt.True(t, plan.KeepsArch("v6-m"))
	gt.True(t, plan.KeepsArch("v8-m.main+fp"))
	gt.False(t, plan.KeepsArch("v7-m"))
	gt.False(t, plan.KeepsArch("softfp"))

	cfg.Archs = []string{"v7-m"}
	gt.True(t, model.NewPrunePlan(cfg.Toolchains[1], cfg).KeepsArch("v7-m"))
}

func TestNewPrunePlan(t *testing.T) {
	cfg := model.DefaultConfig()

	windows := model.NewPrunePlan(cfg.Toolchains[0], cfg)
	gt.Equal(t, windows.Files[0], filepath.Join("libexec", "gcc", "arm-none-eabi", "14.2.1", "f951.exe"))
	gt.Equal(t, windows.Files[1], filepath.Join("libexec", "gcc", "arm-none-eabi", "14.2.1", "lto1.exe"))
	gt.Equal(t, windows.Files[2], filepath.Join("bin", "arm-none-eabi-lto-dump.exe"))

	linux := model.NewPrunePlan(cfg.Toolchains[1], cfg)
	gt.Equal(t, linux.Files[2], filepath.Join("bin", "arm-none-eabi-lto-dump"))
	gt.Equal(t, linux.ThumbDirs[0], filepath.Join("lib", "gcc", "arm-none-eabi", "14.2.1", "thumb"))
	gt.Equal(t, linux.ThumbDirs[1], filepath.Join("arm-none-eabi", "lib", "thumb"))
	gt.Equal(t, linux.ArmDirs[0], filepath.Join("lib", "gcc", "arm-none-eabi", "14.2.1", "arm"))
	gt.Equal(t, linux.ArmDirs[1], filepath.Join("arm-none-eabi", "lib", "arm"))
}

func TestProgress_Ratio(t *testing.T) {
	gt.Equal(t, model.Progress{Downloaded: 5}.Ratio(), -1.0)
	gt.Equal(t, model.Progress{Downloaded: 25, Expected: 100}.Ratio(), 0.25)
	gt.Equal(t, model.Progress{Downloaded: 120, Expected: 100}.Ratio(), 1.0)
}

func TestRunReport_Failures(t *testing.T) {
	report := &model.RunReport{Results: []*model.StageResult{
		{Toolchain: "a.zip"},
		{Toolchain: "b.tar.xz", Err: types.ErrDownloadFailed},
		{Toolchain: "c.tar.xz"},
	}}

	failed := report.Failures()
	gt.Equal(t, len(failed), 1)
	gt.Equal(t, failed[0].Toolchain, model.Toolchain("b.tar.xz"))
}

func TestIsArchive(t *testing.T) {
	gt.True(t, model.IsArchive("x.tar.xz"))
	gt.True(t, model.IsArchive("x.zip"))
	gt.False(t, model.IsArchive("x.tar.gz"))
}
