package gcs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
)

// Bucket stores uploaded bid PDFs and hands out time-limited read URLs for
// the extraction service.
type Bucket struct {
	client     *storage.Client
	bucketName string
}

func NewBucket(ctx context.Context, bucketName string) (*Bucket, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &Bucket{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (b *Bucket) Close() error {
	return b.client.Close()
}

func (b *Bucket) Put(ctx context.Context, objectName, contentType string, body io.Reader) error {
	w := b.client.Bucket(b.bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", objectName, err)
	}
	return nil
}

func (b *Bucket) SignedReadURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	url, err := b.client.Bucket(b.bucketName).SignedURL(objectName, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return url, nil
}
