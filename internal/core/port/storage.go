package port

import (
	"context"
	"time"
)

// ObjectStore is raw object access backing the document store
type ObjectStore interface {
	// GetObject returns found=false for missing keys instead of an error
	GetObject(ctx context.Context, key string) ([]byte, bool, error)
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	RemoveObject(ctx context.Context, key string) error
}

// UploadCredential is a presigned write grant for one blob
type UploadCredential struct {
	URL       string
	Headers   map[string]string
	ExpiresAt time.Time
}

// BlobStorage is the collaborator moving media payloads in and out of the
// object store
type BlobStorage interface {
	IssueUploadCredential(ctx context.Context, path string, contentType string, size int64) (*UploadCredential, error)
	Put(ctx context.Context, cred *UploadCredential, data []byte) error
	Delete(ctx context.Context, path string) error
}
