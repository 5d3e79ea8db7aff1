package interfaces

import (
	"context"

	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
)

// Fetcher downloads a URL to a local path unless the path already exists
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) (skipped bool, err error)
}

// Extractor unpacks an archive unless outDir already exists
type Extractor interface {
	Extract(ctx context.Context, archivePath, outDir string, format model.ArchiveFormat) (skipped bool, err error)
}

// Packager compresses srcDir into a .tar.xz archive under distDir
type Packager interface {
	Pack(ctx context.Context, srcDir, distDir string) (archivePath string, err error)
}

// Publisher uploads a packaged archive and returns the object it was stored as
type Publisher interface {
	Publish(ctx context.Context, archivePath string) (object string, err error)
}
