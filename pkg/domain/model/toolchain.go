package model

import (
	"strings"

	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ArchiveFormat is the container format of a published toolchain archive
type ArchiveFormat string

const (
	FormatZip     ArchiveFormat = "zip"
	FormatTarXz   ArchiveFormat = "tar.xz"
	FormatUnknown ArchiveFormat = ""
)

// Extension returns the filename suffix including the leading dot
func (f ArchiveFormat) Extension() string {
	if f == FormatUnknown {
		return ""
	}
	return "." + string(f)
}

// Toolchain is a toolchain identifier, i.e. the archive filename published by ARM.
// It encodes host platform, architecture and archive format.
type Toolchain string

// Format returns the archive format derived from the filename extension
func (t Toolchain) Format() ArchiveFormat {
	switch {
	case strings.HasSuffix(string(t), FormatZip.Extension()):
		return FormatZip
	case strings.HasSuffix(string(t), FormatTarXz.Extension()):
		return FormatTarXz
	default:
		return FormatUnknown
	}
}

// Dir returns the name of the directory the archive unpacks to
func (t Toolchain) Dir() string {
	return strings.TrimSuffix(string(t), t.Format().Extension())
}

// ExeSuffix returns the executable suffix of the host platform.
// Windows builds are the only ones shipped as zip.
func (t Toolchain) ExeSuffix() string {
	if t.Format() == FormatZip {
		return ".exe"
	}
	return ""
}

// URL joins the base URL and the archive filename
func (t Toolchain) URL(baseURL string) string {
	return baseURL + string(t)
}

// Validate checks that the identifier names a supported archive
func (t Toolchain) Validate() error {
	if t.Format() == FormatUnknown {
		return goerr.Wrap(types.ErrUnsupportedFormat, "unsupported toolchain archive", goerr.V("toolchain", string(t)))
	}
	if t.Dir() == "" {
		return goerr.Wrap(types.ErrInvalidConfig, "toolchain name is empty", goerr.V("toolchain", string(t)))
	}
	return nil
}
