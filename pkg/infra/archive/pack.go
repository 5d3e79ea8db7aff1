package archive

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ulikunitz/xz"

	"github.com/m-mizutani/armtoolchain/pkg/domain/interfaces"
	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
)

// Packager writes .tar.xz archives of extracted toolchains
type Packager struct{}

var _ interfaces.Packager = (*Packager)(nil)

// NewPackager creates a Packager
func NewPackager() *Packager {
	return &Packager{}
}

// Pack compresses srcDir into <distDir>/<base(srcDir)>.tar.xz. Entry names keep the
// base name of srcDir as their top-level folder. An existing archive is overwritten.
func (p *Packager) Pack(ctx context.Context, srcDir, distDir string) (string, error) {
	logger := logging.From(ctx)

	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create dist directory", goerr.V("dir", distDir))
	}

	base := filepath.Base(filepath.Clean(srcDir))
	archivePath := filepath.Join(distDir, base+model.FormatTarXz.Extension())

	logger.Info("Compressing", "dir", srcDir, "archive", archivePath)

	nFiles, err := writeTarXz(ctx, srcDir, base, archivePath)
	if err != nil {
		return "", goerr.Wrap(errors.Join(types.ErrPackFailed, err), "failed to package toolchain",
			goerr.V("dir", srcDir),
			goerr.V("archive", archivePath),
		)
	}

	logger.Info("Done compressing", "archive", archivePath, "files", nFiles)
	return archivePath, nil
}

func writeTarXz(ctx context.Context, srcDir, prefix, archivePath string) (n int, err error) {
	out, err := os.Create(archivePath)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create archive file")
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = goerr.Wrap(closeErr, "failed to close archive file")
		}
	}()

	xw, err := xz.NewWriter(out)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create xz writer")
	}
	tw := tar.NewWriter(xw)

	n, err = addTree(ctx, tw, srcDir, prefix)
	if err != nil {
		return n, err
	}

	if err := tw.Close(); err != nil {
		return n, goerr.Wrap(err, "failed to finish tar stream")
	}
	if err := xw.Close(); err != nil {
		return n, goerr.Wrap(err, "failed to finish xz stream")
	}
	return n, nil
}

type inode struct {
	dev, ino uint64
}

func addTree(ctx context.Context, tw *tar.Writer, srcDir, prefix string) (int, error) {
	nFiles := 0
	// first archive name of every multiply linked file
	linked := make(map[inode]string)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return goerr.Wrap(err, "failed to compute archive name", goerr.V("path", path))
		}
		name := filepath.ToSlash(filepath.Join(prefix, rel))

		info, err := d.Info()
		if err != nil {
			return goerr.Wrap(err, "failed to stat", goerr.V("path", path))
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return goerr.Wrap(err, "failed to read symlink", goerr.V("path", path))
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return goerr.Wrap(err, "failed to build tar header", goerr.V("path", path))
		}
		header.Name = name
		if info.IsDir() {
			header.Name += "/"
		}
		// Owner names of the build machine are meaningless to consumers
		header.Uname, header.Gname = "", ""

		if info.Mode().IsRegular() {
			if id, ok := inodeOf(info); ok {
				if first, seen := linked[id]; seen {
					header.Typeflag = tar.TypeLink
					header.Linkname = first
					header.Size = 0
				} else {
					linked[id] = name
				}
			}
		}

		if err := tw.WriteHeader(header); err != nil {
			return goerr.Wrap(err, "failed to write tar header", goerr.V("name", name))
		}

		if header.Typeflag != tar.TypeReg {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return goerr.Wrap(err, "failed to open", goerr.V("path", path))
		}
		defer f.Close()

		if _, err := io.CopyN(tw, f, header.Size); err != nil {
			return goerr.Wrap(err, "failed to copy file contents", goerr.V("path", path))
		}
		nFiles++
		return nil
	})

	return nFiles, err
}
