package model

import (
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Policy decides what happens when one toolchain fails
type Policy string

const (
	// PolicyFailFast stops the whole run on the first failure
	PolicyFailFast Policy = "fail-fast"
	// PolicyContinue records the failure and moves on to the next toolchain
	PolicyContinue Policy = "continue"
)

const (
	DefaultBaseURL    = "https://developer.arm.com/-/media/Files/downloads/gnu/14.2.rel1/binrel/"
	DefaultTarget     = "arm-none-eabi"
	DefaultGCCVersion = "14.2.1"
	DefaultDistDir    = "dist"
)

// DefaultToolchains lists the host builds of ARM GNU Toolchain 14.2.rel1
func DefaultToolchains() []Toolchain {
	return []Toolchain{
		"arm-gnu-toolchain-14.2.rel1-mingw-w64-x86_64-arm-none-eabi.zip",
		"arm-gnu-toolchain-14.2.rel1-x86_64-arm-none-eabi.tar.xz",
		"arm-gnu-toolchain-14.2.rel1-aarch64-arm-none-eabi.tar.xz",
		"arm-gnu-toolchain-14.2.rel1-darwin-x86_64-arm-none-eabi.tar.xz",
		"arm-gnu-toolchain-14.2.rel1-darwin-arm64-arm-none-eabi.tar.xz",
	}
}

// DefaultArchs is the Thumb architecture allow-list
func DefaultArchs() []string {
	return []string{
		"v6-m",         // Cortex-M0+
		"v7e-m+fp",     // Cortex-M4
		"v7e-m+dp",     // Cortex-M7
		"v8-m.main+fp", // Cortex-M33
	}
}

// Config parameterizes a generator run
type Config struct {
	BaseURL    string
	Toolchains []Toolchain
	Archs      []string
	Target     string
	GCCVersion string

	// WorkDir receives downloaded archives and extracted trees
	WorkDir string
	// DistDir receives repackaged archives
	DistDir string

	Policy Policy
}

// DefaultConfig returns the configuration of the official 14.2.rel1 release
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		Toolchains: DefaultToolchains(),
		Archs:      DefaultArchs(),
		Target:     DefaultTarget,
		GCCVersion: DefaultGCCVersion,
		WorkDir:    ".",
		DistDir:    DefaultDistDir,
		Policy:     PolicyFailFast,
	}
}

// Validate rejects configurations that cannot produce any archive
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return goerr.Wrap(types.ErrInvalidConfig, "base URL is empty")
	}
	if len(c.Toolchains) == 0 {
		return goerr.Wrap(types.ErrInvalidConfig, "no toolchain configured")
	}
	if len(c.Archs) == 0 {
		return goerr.Wrap(types.ErrInvalidConfig, "architecture allow-list is empty")
	}
	if c.Target == "" || c.GCCVersion == "" {
		return goerr.Wrap(types.ErrInvalidConfig, "target and GCC version are required",
			goerr.V("target", c.Target),
			goerr.V("gcc_version", c.GCCVersion),
		)
	}
	switch c.Policy {
	case PolicyFailFast, PolicyContinue:
	default:
		return goerr.Wrap(types.ErrInvalidConfig, "unknown failure policy", goerr.V("policy", string(c.Policy)))
	}

	for _, tc := range c.Toolchains {
		if err := tc.Validate(); err != nil {
			return err
		}
	}

	return nil
}
