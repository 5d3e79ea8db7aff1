package config

import (
	"errors"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/armtoolchain/pkg/controller/console"
	"github.com/m-mizutani/armtoolchain/pkg/domain/interfaces"
	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
)

// Pipeline holds toolchain generation configuration. Empty values fall back to the
// configuration file, then to the built-in 14.2.rel1 defaults.
type Pipeline struct {
	ConfigFile string
	BaseURL    string
	Toolchains []string
	Archs      []string
	Target     string
	GCCVersion string
	WorkDir    string
	DistDir    string
	Policy     string
	Progress   string
}

// pipelineFile is the layout of the TOML configuration file
type pipelineFile struct {
	BaseURL    string   `toml:"base_url"`
	Toolchains []string `toml:"toolchains"`
	Archs      []string `toml:"archs"`
	Target     string   `toml:"target"`
	GCCVersion string   `toml:"gcc_version"`
	WorkDir    string   `toml:"work_dir"`
	DistDir    string   `toml:"dist_dir"`
	Policy     string   `toml:"policy"`
}

// Flags returns CLI flags for pipeline configuration
func (c *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML file overriding the built-in toolchain list",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL toolchain archive names are appended to (default: " + model.DefaultBaseURL + ")",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_BASE_URL"),
		},
		&cli.StringSliceFlag{
			Name:        "toolchain",
			Usage:       "Toolchain archive name, repeatable (default: the five 14.2.rel1 host builds)",
			Destination: &c.Toolchains,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_TOOLCHAINS"),
		},
		&cli.StringSliceFlag{
			Name:        "arch",
			Usage:       "Thumb architecture folder to keep, repeatable (default: v6-m, v7e-m+fp, v7e-m+dp, v8-m.main+fp)",
			Destination: &c.Archs,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_ARCHS"),
		},
		&cli.StringFlag{
			Name:        "target",
			Usage:       "Target triple (default: " + model.DefaultTarget + ")",
			Destination: &c.Target,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_TARGET"),
		},
		&cli.StringFlag{
			Name:        "gcc-version",
			Usage:       "GCC version of the library tree (default: " + model.DefaultGCCVersion + ")",
			Destination: &c.GCCVersion,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_GCC_VERSION"),
		},
		&cli.StringFlag{
			Name:        "work-dir",
			Usage:       "Directory for downloaded archives and extracted trees (default: .)",
			Destination: &c.WorkDir,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_WORK_DIR"),
		},
		&cli.StringFlag{
			Name:        "dist-dir",
			Usage:       "Directory for repackaged archives (default: " + model.DefaultDistDir + ")",
			Destination: &c.DistDir,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_DIST_DIR"),
		},
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Failure policy (fail-fast, continue)",
			Destination: &c.Policy,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_POLICY"),
		},
		&cli.StringFlag{
			Name:        "progress",
			Usage:       "Download progress output (bar, log, none)",
			Value:       "bar",
			Destination: &c.Progress,
			Sources:     cli.EnvVars("ARMTOOLCHAIN_PROGRESS"),
		},
	}
}

// Build merges defaults, the configuration file and flags into a validated model.Config
func (c *Pipeline) Build() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if c.ConfigFile != "" {
		file, err := loadPipelineFile(c.ConfigFile)
		if err != nil {
			return nil, err
		}
		file.applyTo(cfg)
	}

	overlay := pipelineFile{
		BaseURL:    c.BaseURL,
		Toolchains: c.Toolchains,
		Archs:      c.Archs,
		Target:     c.Target,
		GCCVersion: c.GCCVersion,
		WorkDir:    c.WorkDir,
		DistDir:    c.DistDir,
		Policy:     c.Policy,
	}
	overlay.applyTo(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Reporter returns the progress reporter selected by --progress
func (c *Pipeline) Reporter(logger *slog.Logger) (interfaces.ProgressReporter, error) {
	switch c.Progress {
	case "", "bar":
		return console.NewBar(os.Stdout), nil
	case "log":
		return console.NewLogReporter(logger), nil
	case "none":
		return console.Nop{}, nil
	default:
		return nil, goerr.Wrap(types.ErrInvalidConfig, "invalid progress mode", goerr.V("progress", c.Progress))
	}
}

func loadPipelineFile(path string) (*pipelineFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open config file", goerr.V("path", path))
	}
	defer f.Close()

	var file pipelineFile
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&file); err != nil {
		return nil, goerr.Wrap(errors.Join(types.ErrInvalidConfig, err), "failed to parse config file", goerr.V("path", path))
	}
	return &file, nil
}

func (f *pipelineFile) applyTo(cfg *model.Config) {
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if len(f.Toolchains) > 0 {
		cfg.Toolchains = make([]model.Toolchain, 0, len(f.Toolchains))
		for _, tc := range f.Toolchains {
			cfg.Toolchains = append(cfg.Toolchains, model.Toolchain(tc))
		}
	}
	if len(f.Archs) > 0 {
		cfg.Archs = f.Archs
	}
	if f.Target != "" {
		cfg.Target = f.Target
	}
	if f.GCCVersion != "" {
		cfg.GCCVersion = f.GCCVersion
	}
	if f.WorkDir != "" {
		cfg.WorkDir = f.WorkDir
	}
	if f.DistDir != "" {
		cfg.DistDir = f.DistDir
	}
	if f.Policy != "" {
		cfg.Policy = model.Policy(f.Policy)
	}
}
