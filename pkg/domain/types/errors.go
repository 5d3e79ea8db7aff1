package types

import "errors"

var (
	// ErrDownloadFailed is fatal to the whole run under the fail-fast policy.
	ErrDownloadFailed = errors.New("failed to download files")

	// ErrUnsupportedFormat is returned for toolchain archives that are neither .zip nor .tar.xz.
	ErrUnsupportedFormat = errors.New("unexpected archive format")

	ErrExtractFailed  = errors.New("failed to extract archive")
	ErrUnsafeEntry    = errors.New("unsafe archive entry")
	ErrLayoutNotFound = errors.New("toolchain layout not found")
	ErrPackFailed     = errors.New("failed to package toolchain")
	ErrPublishFailed  = errors.New("failed to publish archive")
	ErrInvalidConfig  = errors.New("invalid configuration")
)
