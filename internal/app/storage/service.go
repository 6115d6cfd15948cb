/*
Package storage provides attachment persistence behind a small BlobStore interface.

Attachment bytes are written once under a generated name and never updated. Two
backends exist: a local uploads directory (served read-only over HTTP) and an
S3-compatible object store.
*/
package storage

import (
	"context"

	"dmchat/internal/configs"
)

// BlobStore defines the write-once contract the message relay depends on.
type BlobStore interface {
	// Write persists data under the given generated name and returns the
	// reference under which the attachment can later be fetched.
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// NewBlobStore is the factory function for BlobStore. It selects the backend
// based on the application configuration.
func NewBlobStore(cfg *configs.AppConfig) (BlobStore, error) {
	if cfg.StorageBackend == configs.StorageBackendS3 {
		return newS3Store(s3Config{
			BucketName:      cfg.S3BucketName,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	}

	return NewLocalStore(cfg.UploadDir)
}
