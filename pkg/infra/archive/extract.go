package archive

import (
	"archive/tar"
	"archive/zip"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ulikunitz/xz"

	"github.com/m-mizutani/armtoolchain/pkg/domain/interfaces"
	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
)

// Extractor unpacks .tar.xz and .zip toolchain archives
type Extractor struct{}

var _ interfaces.Extractor = (*Extractor)(nil)

// NewExtractor creates an Extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks archivePath. Tar entries carry their own top-level folder and are
// extracted next to outDir; zip entries are extracted into outDir.
// Nothing happens when outDir already exists. A failure leaves a partially populated tree.
func (x *Extractor) Extract(ctx context.Context, archivePath, outDir string, format model.ArchiveFormat) (bool, error) {
	logger := logging.From(ctx)

	if _, err := os.Stat(outDir); err == nil {
		logger.Info("Folder already exists, skipping extract", "dir", outDir)
		return true, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, goerr.Wrap(err, "failed to stat extract target", goerr.V("dir", outDir))
	}

	logger.Info("Extracting", "archive", archivePath, "format", format)

	var (
		nFiles int
		err    error
	)
	switch format {
	case model.FormatTarXz:
		nFiles, err = extractTarXz(ctx, archivePath, filepath.Dir(outDir))
	case model.FormatZip:
		nFiles, err = extractZip(ctx, archivePath, outDir)
	default:
		return false, goerr.Wrap(types.ErrUnsupportedFormat, "cannot extract archive",
			goerr.V("archive", archivePath),
			goerr.V("format", string(format)),
		)
	}
	if err != nil {
		return false, goerr.Wrap(errors.Join(types.ErrExtractFailed, err), "failed to extract toolchain",
			goerr.V("archive", archivePath),
			goerr.V("files", nFiles),
		)
	}

	logger.Info("Done extracting", "archive", archivePath, "files", nFiles)
	return false, nil
}

func extractTarXz(ctx context.Context, archivePath, destDir string) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to open archive")
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create xz reader")
	}

	return untar(ctx, xzr, destDir)
}

// untar reads a tar stream into destDir applying a data-only filter: entries must stay
// inside destDir, devices and fifos are refused, and setuid/setgid/sticky plus group and
// other write bits are cleared.
func untar(ctx context.Context, r io.Reader, destDir string) (int, error) {
	logger := logging.From(ctx)
	tr := tar.NewReader(r)
	nFiles := 0

	for {
		if err := ctx.Err(); err != nil {
			return nFiles, err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nFiles, nil
		}
		// insecure names are rejected below with a precise reason
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return nFiles, goerr.Wrap(err, "failed to read tar entry")
		}
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return nFiles, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirMode(hdr.FileInfo().Mode())); err != nil {
				return nFiles, goerr.Wrap(err, "failed to create directory", goerr.V("path", target))
			}

		case tar.TypeReg:
			if err := writeFile(target, tr, fileMode(hdr.FileInfo().Mode())); err != nil {
				return nFiles, err
			}
			nFiles++

		case tar.TypeSymlink:
			if err := checkLinkTarget(destDir, target, hdr.Linkname); err != nil {
				return nFiles, err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nFiles, goerr.Wrap(err, "failed to create parent directory", goerr.V("path", target))
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return nFiles, goerr.Wrap(err, "failed to create symlink",
					goerr.V("path", target),
					goerr.V("link", hdr.Linkname),
				)
			}

		case tar.TypeLink:
			source, err := securePath(destDir, hdr.Linkname)
			if err != nil {
				return nFiles, err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nFiles, goerr.Wrap(err, "failed to create parent directory", goerr.V("path", target))
			}
			if err := os.Link(source, target); err != nil {
				return nFiles, goerr.Wrap(err, "failed to create hard link",
					goerr.V("path", target),
					goerr.V("link", hdr.Linkname),
				)
			}
			nFiles++

		default:
			return nFiles, goerr.Wrap(types.ErrUnsafeEntry, "unsupported tar entry type",
				goerr.V("name", hdr.Name),
				goerr.V("type", string(hdr.Typeflag)),
			)
		}

		logger.Debug("Extracted entry", "name", hdr.Name)
	}
}

func extractZip(ctx context.Context, archivePath, outDir string) (int, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return 0, goerr.Wrap(err, "failed to open zip archive")
	}
	defer zr.Close()

	nFiles := 0
	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return nFiles, err
		}

		target, err := securePath(outDir, file.Name)
		if err != nil {
			return nFiles, err
		}

		info := file.FileInfo()
		if info.IsDir() {
			if err := os.MkdirAll(target, dirMode(info.Mode())); err != nil {
				return nFiles, goerr.Wrap(err, "failed to create directory", goerr.V("path", target))
			}
			continue
		}
		if !info.Mode().IsRegular() {
			return nFiles, goerr.Wrap(types.ErrUnsafeEntry, "unsupported zip entry",
				goerr.V("name", file.Name),
				goerr.V("mode", info.Mode().String()),
			)
		}

		rc, err := file.Open()
		if err != nil {
			return nFiles, goerr.Wrap(err, "failed to open file in zip", goerr.V("name", file.Name))
		}
		err = writeFile(target, rc, fileMode(info.Mode()))
		_ = rc.Close()
		if err != nil {
			return nFiles, err
		}
		nFiles++
	}

	return nFiles, nil
}

func writeFile(target string, r io.Reader, mode fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return goerr.Wrap(err, "failed to create parent directory", goerr.V("path", target))
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return goerr.Wrap(err, "failed to create file", goerr.V("path", target))
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to write file", goerr.V("path", target))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close file", goerr.V("path", target))
	}
	return nil
}

// securePath resolves an archive entry name below destDir
func securePath(destDir, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") || filepath.VolumeName(name) != "" {
		return "", goerr.Wrap(types.ErrUnsafeEntry, "absolute path in archive", goerr.V("name", name))
	}

	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !within(destDir, target) {
		return "", goerr.Wrap(types.ErrUnsafeEntry, "path escapes destination", goerr.V("name", name))
	}
	return target, nil
}

// checkLinkTarget refuses symlinks pointing outside destDir
func checkLinkTarget(destDir, target, linkname string) error {
	if filepath.IsAbs(linkname) || strings.HasPrefix(linkname, "/") {
		return goerr.Wrap(types.ErrUnsafeEntry, "absolute symlink in archive",
			goerr.V("path", target),
			goerr.V("link", linkname),
		)
	}

	resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(linkname))
	if !within(destDir, resolved) {
		return goerr.Wrap(types.ErrUnsafeEntry, "symlink escapes destination",
			goerr.V("path", target),
			goerr.V("link", linkname),
		)
	}
	return nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileMode(mode fs.FileMode) fs.FileMode {
	perm := mode.Perm() &^ 0o022
	if perm == 0 {
		perm = 0o644
	}
	// owner must be able to read and write what it extracted
	return perm | 0o600
}

func dirMode(mode fs.FileMode) fs.FileMode {
	return (mode.Perm() &^ 0o022) | 0o700
}
