package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ImageStore persists uploaded receipt images and returns a stable URL for
// the transaction's image reference.
type ImageStore interface {
	// Enabled reports whether image persistence is configured.
	Enabled() bool

	// Save writes data under objectName and returns its public URL.
	Save(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

// ReceiptObjectName builds the object path for one uploaded receipt image.
// The filename is reduced to its base name to strip any client-supplied path.
func ReceiptObjectName(owner, filename string) string {
	name := path.Base(filename)
	if name == "." || name == "/" || name == "" {
		name = "receipt"
	}
	return fmt.Sprintf("receipts/%s/%s-%s", owner, uuid.NewString(), name)
}

// GCSStore stores images in a Google Cloud Storage bucket. An empty bucket
// name yields a disabled store so callers don't special-case configuration.
type GCSStore struct {
	bucket string
}

// NewGCS creates a GCSStore for the given bucket.
func NewGCS(bucket string) *GCSStore {
	return &GCSStore{bucket: bucket}
}

// Enabled implements ImageStore.
func (s *GCSStore) Enabled() bool {
	return s.bucket != ""
}

// Save implements ImageStore. It assumes Application Default Credentials
// are configured for the process.
func (s *GCSStore) Save(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("Save: no bucket configured")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("Save: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("Save: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("Save: finalize upload: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}

var _ ImageStore = (*GCSStore)(nil)
