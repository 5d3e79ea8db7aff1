package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/armtoolchain/pkg/domain/interfaces"
	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
)

// fallbackChunkSize is used when the server does not declare a content length
const fallbackChunkSize = 1 << 20

// partialSuffix marks a transfer in progress
const partialSuffix = ".part"

type config struct {
	httpClient *http.Client
	reporter   interfaces.ProgressReporter
	chunks     int
}

// Option is a functional option for Fetcher configuration
type Option func(*config)

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithReporter sets the progress observer
func WithReporter(reporter interfaces.ProgressReporter) Option {
	return func(c *config) {
		c.reporter = reporter
	}
}

// WithChunks sets how many chunks a transfer of known size is split into
func WithChunks(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.chunks = n
		}
	}
}

// Fetcher downloads toolchain archives over plain HTTP(S)
type Fetcher struct {
	cfg config
}

var _ interfaces.Fetcher = (*Fetcher)(nil)

// New creates a Fetcher
func New(opts ...Option) *Fetcher {
	cfg := config{
		httpClient: http.DefaultClient,
		reporter:   nopReporter{},
		chunks:     model.DefaultChunkCount,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Fetcher{cfg: cfg}
}

// Fetch downloads url into dest. If dest already exists nothing is requested.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) (bool, error) {
	logger := logging.From(ctx)

	if _, err := os.Stat(dest); err == nil {
		logger.Info("File already exists, skipping download", "path", dest)
		f.cfg.reporter.Skip(dest, "already exists")
		return true, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, goerr.Wrap(err, "failed to stat download target", goerr.V("path", dest))
	}

	logger.Info("Downloading", "url", url, "path", dest)

	if err := f.download(ctx, url, dest); err != nil {
		return false, goerr.Wrap(errors.Join(types.ErrDownloadFailed, err), "failed to download toolchain",
			goerr.V("url", url),
			goerr.V("path", dest),
		)
	}

	return false, nil
}

func (f *Fetcher) download(ctx context.Context, url, dest string) (err error) {
	logger := logging.From(ctx)
	reporter := f.cfg.reporter

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create download request")
	}

	resp, err := f.cfg.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to send download request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.New("unexpected status code", goerr.V("status", resp.StatusCode))
	}

	expected := resp.ContentLength
	if expected <= 0 {
		logger.Warn("URL has no Content-Length header", "url", url)
		expected = 0
	}

	chunkSize := int64(fallbackChunkSize)
	maxChunks := 0
	if expected > 0 {
		chunkSize = (expected + int64(f.cfg.chunks) - 1) / int64(f.cfg.chunks)
		maxChunks = f.cfg.chunks
	}

	partial := dest + partialSuffix
	file, err := os.Create(partial)
	if err != nil {
		return goerr.Wrap(err, "failed to create partial file", goerr.V("path", partial))
	}
	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(partial)
		}
	}()

	reporter.Begin(dest, expected)
	defer func() { reporter.End(dest, err) }()

	progress := model.Progress{
		Name:      dest,
		Expected:  expected,
		MaxChunks: maxChunks,
	}
	buf := make([]byte, chunkSize)
	for {
		n, readErr := readChunk(resp.Body, buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return goerr.Wrap(err, "failed to write chunk", goerr.V("path", partial))
			}
			progress.Downloaded += int64(n)
			progress.Chunks++
			reporter.Advance(progress)
		}

		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return goerr.Wrap(readErr, "failed to read response body",
				goerr.V("downloaded", progress.Downloaded),
			)
		}
	}

	if expected > 0 && progress.Downloaded != expected {
		return goerr.New("response body shorter than declared",
			goerr.V("expected", expected),
			goerr.V("downloaded", progress.Downloaded),
		)
	}

	if err := file.Close(); err != nil {
		return goerr.Wrap(err, "failed to close partial file", goerr.V("path", partial))
	}
	if err := os.Rename(partial, dest); err != nil {
		return goerr.Wrap(err, "failed to move download into place",
			goerr.V("from", partial),
			goerr.V("to", dest),
		)
	}

	logger.Info("Downloaded", "path", dest, "size_bytes", progress.Downloaded)
	return nil
}

// readChunk fills buf from r. Only a clean end of body is reported as io.EOF;
// a connection dropped mid-stream surfaces as io.ErrUnexpectedEOF and must fail the transfer.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

type nopReporter struct{}

func (nopReporter) Begin(string, int64)    {}
func (nopReporter) Advance(model.Progress) {}
func (nopReporter) End(string, error)      {}
func (nopReporter) Skip(string, string)    {}
