package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/m-mizutani/armtoolchain/pkg/domain/interfaces"
	"github.com/m-mizutani/armtoolchain/pkg/domain/types"
	"github.com/m-mizutani/armtoolchain/pkg/utils/logging"
)

const archiveContentType = "application/x-xz"

// ObjectWriterFactory opens a writer for an object in the bucket
type ObjectWriterFactory func(ctx context.Context, object string) io.WriteCloser

// Publisher uploads packaged archives to a Cloud Storage bucket
type Publisher struct {
	bucket    string
	prefix    string
	newWriter ObjectWriterFactory
	client    *storage.Client
}

var _ interfaces.Publisher = (*Publisher)(nil)

// New creates a Publisher backed by Cloud Storage. endpoint is optional and mainly
// used with emulators, in which case authentication is disabled.
func New(ctx context.Context, bucket, prefix, endpoint string) (*Publisher, error) {
	var opts []option.ClientOption
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client", goerr.V("bucket", bucket))
	}

	handle := client.Bucket(bucket)
	p := NewWithWriter(bucket, prefix, func(ctx context.Context, object string) io.WriteCloser {
		w := handle.Object(object).NewWriter(ctx)
		w.ContentType = archiveContentType
		return w
	})
	p.client = client
	return p, nil
}

// NewWithWriter creates a Publisher writing through newWriter
func NewWithWriter(bucket, prefix string, newWriter ObjectWriterFactory) *Publisher {
	return &Publisher{
		bucket:    bucket,
		prefix:    prefix,
		newWriter: newWriter,
	}
}

// ObjectName returns the object an archive is stored as
func (p *Publisher) ObjectName(archivePath string) string {
	return p.prefix + filepath.Base(archivePath)
}

// Publish uploads archivePath and returns its gs:// URL
func (p *Publisher) Publish(ctx context.Context, archivePath string) (string, error) {
	logger := logging.From(ctx)
	object := p.ObjectName(archivePath)

	f, err := os.Open(archivePath)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open archive", goerr.V("path", archivePath))
	}
	defer f.Close()

	logger.Info("Uploading archive", "path", archivePath, "bucket", p.bucket, "object", object)

	// cancelling the writer's context before Close discards a partial upload
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := p.newWriter(wctx, object)
	n, err := io.Copy(w, f)
	if err != nil {
		cancel()
		_ = w.Close()
		return "", goerr.Wrap(errors.Join(types.ErrPublishFailed, err), "failed to upload archive",
			goerr.V("bucket", p.bucket),
			goerr.V("object", object),
		)
	}
	// the object is committed on Close
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(errors.Join(types.ErrPublishFailed, err), "failed to finalize upload",
			goerr.V("bucket", p.bucket),
			goerr.V("object", object),
		)
	}

	url := "gs://" + p.bucket + "/" + object
	logger.Info("Uploaded archive", "url", url, "size_bytes", n)
	return url, nil
}

// Close releases the underlying client
func (p *Publisher) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}
