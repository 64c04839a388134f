package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/utils/safe"
)

const gcsScheme = "gs://"

// Writer stores exported files either on the local filesystem or in Google
// Cloud Storage when the destination is a gs://bucket/object URL.
type Writer struct {
	mu        sync.Mutex
	gcs       *storage.Client
	newClient func(ctx context.Context) (*storage.Client, error)
}

func New() *Writer {
	return &Writer{
		newClient: func(ctx context.Context) (*storage.Client, error) {
			return storage.NewClient(ctx)
		},
	}
}

// ParseGCSURL splits gs://bucket/path/to/object.
func ParseGCSURL(dest string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(dest, gcsScheme)
	if !ok {
		return "", "", goerr.New("not a gs:// URL", goerr.V("dest", dest))
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", goerr.New("gs:// URL needs a bucket and an object", goerr.V("dest", dest))
	}
	return bucket, object, nil
}

// Write stores data at dest.
func (w *Writer) Write(ctx context.Context, dest, contentType string, data []byte) error {
	if strings.HasPrefix(dest, gcsScheme) {
		return w.writeGCS(ctx, dest, contentType, data)
	}
	return writeLocal(dest, data)
}

func writeLocal(dest string, data []byte) error {
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "failed to create directory", goerr.V("dir", dir))
		}
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write file", goerr.V("path", dest))
	}
	return nil
}

func (w *Writer) client(ctx context.Context) (*storage.Client, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gcs == nil {
		c, err := w.newClient(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage client")
		}
		w.gcs = c
	}
	return w.gcs, nil
}

func (w *Writer) writeGCS(ctx context.Context, dest, contentType string, data []byte) error {
	bucket, object, err := ParseGCSURL(dest)
	if err != nil {
		return err
	}

	client, err := w.client(ctx)
	if err != nil {
		return err
	}

	// Cancelling the writer's context aborts the upload instead of committing
	// a partial object.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ow := client.Bucket(bucket).Object(object).NewWriter(wctx)
	ow.ContentType = contentType
	if _, err := ow.Write(data); err != nil {
		cancel()
		safe.Close(ctx, ow)
		return goerr.Wrap(err, "failed to write object", goerr.V("bucket", bucket), goerr.V("object", object))
	}
	if err := ow.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", bucket), goerr.V("object", object))
	}
	return nil
}

// Close releases the storage client if one was created.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gcs == nil {
		return nil
	}
	err := w.gcs.Close()
	w.gcs = nil
	return err
}
