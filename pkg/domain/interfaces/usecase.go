package interfaces

import (
	"context"

	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
)

// GeneratorUseCase runs the fetch, extract, prune and pack pipeline over every configured toolchain
type GeneratorUseCase interface {
	Run(ctx context.Context) (*model.RunReport, error)
}

// PrunerUseCase trims an extracted toolchain tree
type PrunerUseCase interface {
	// Prune removes unneeded files from root and returns the removed paths
	Prune(ctx context.Context, root string, plan *model.PrunePlan) ([]string, error)
}
