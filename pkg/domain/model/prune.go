package model

import "path/filepath"

// PrunePlan lists what the pruner removes from one extracted toolchain.
// All paths are relative to the toolchain root.
type PrunePlan struct {
	// Files are removed when present
	Files []string
	// ThumbDirs are restricted to the architecture allow-list
	ThumbDirs []string
	// ArmDirs are removed entirely
	ArmDirs []string
	// Archs is the allow-list applied to every ThumbDirs entry
	Archs []string
}

// KeepsArch reports whether the Thumb architecture folder name survives pruning
func (p *PrunePlan) KeepsArch(name string) bool {
	for _, arch := range p.Archs {
		if arch == name {
			return true
		}
	}
	return false
}

// NewPrunePlan derives the plan for a toolchain from the configured target and GCC version
func NewPrunePlan(tc Toolchain, cfg *Config) *PrunePlan {
	exe := tc.ExeSuffix()
	libexec := filepath.Join("libexec", "gcc", cfg.Target, cfg.GCCVersion)
	gccLib := filepath.Join("lib", "gcc", cfg.Target, cfg.GCCVersion)
	targetLib := filepath.Join(cfg.Target, "lib")

	return &PrunePlan{
		Files: []string{
			filepath.Join(libexec, "f951"+exe),
			filepath.Join(libexec, "lto1"+exe),
			filepath.Join("bin", cfg.Target+"-lto-dump"+exe),
		},
		ThumbDirs: []string{
			filepath.Join(gccLib, "thumb"),
			filepath.Join(targetLib, "thumb"),
		},
		ArmDirs: []string{
			filepath.Join(gccLib, "arm"),
			filepath.Join(targetLib, "arm"),
		},
		Archs: cfg.Archs,
	}
}
