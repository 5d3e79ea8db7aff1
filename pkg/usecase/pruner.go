package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/armtoolchain/pkg/domain/interfaces"
	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
)

// softFloatDir holds the softfp ABI variant of a multilib
const softFloatDir = "softfp"

type prunerUseCase struct{}

// NewPruner creates a pruner. What is kept is decided by each PrunePlan.
func NewPruner() interfaces.PrunerUseCase {
	return &prunerUseCase{}
}

// Prune applies plan to the toolchain rooted at root. Deletions are unconditional.
func (uc *prunerUseCase) Prune(ctx context.Context, root string, plan *model.PrunePlan) ([]string, error) {
	logger := logging.From(ctx)
	var removed []string

	for _, rel := range plan.Files {
		ok, err := removeIfExist(filepath.Join(root, rel))
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, rel)
		}
	}

	for _, rel := range plan.ThumbDirs {
		paths, err := uc.restrictArchs(filepath.Join(root, rel), plan)
		if err != nil {
			return removed, err
		}
		for _, p := range paths {
			removed = append(removed, filepath.Join(rel, p))
		}
	}

	for _, rel := range plan.ArmDirs {
		ok, err := removeIfExist(filepath.Join(root, rel))
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, rel)
		}
	}

	logger.Info("Pruned toolchain", "root", root, "removed", len(removed))
	for _, rel := range removed {
		logger.Debug("Removed", "path", rel)
	}

	return removed, nil
}

// restrictArchs deletes every entry of parent that is not an allowed architecture,
// then the softfp variant of each allowed one. Returned paths are relative to parent.
func (uc *prunerUseCase) restrictArchs(parent string, plan *model.PrunePlan) ([]string, error) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(types.ErrLayoutNotFound, "multilib directory not found", goerr.V("dir", parent))
		}
		return nil, goerr.Wrap(err, "failed to list multilib directory", goerr.V("dir", parent))
	}

	var removed []string
	for _, entry := range entries {
		if plan.KeepsArch(entry.Name()) {
			continue
		}
		if _, err := removeIfExist(filepath.Join(parent, entry.Name())); err != nil {
			return removed, err
		}
		removed = append(removed, entry.Name())
	}

	// only keep the hard float / no float variants
	for _, arch := range plan.Archs {
		ok, err := removeIfExist(filepath.Join(parent, arch, softFloatDir))
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, filepath.Join(arch, softFloatDir))
		}
	}

	return removed, nil
}

// removeIfExist deletes a file or a whole directory tree. A missing path is not an error.
func removeIfExist(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to stat", goerr.V("path", path))
	}

	if err := os.RemoveAll(path); err != nil {
		return false, goerr.Wrap(err, "failed to remove", goerr.V("path", path))
	}
	return true, nil
}
