package port

import (
	"context"
	"encoding/json"
	"time"
)

// DocumentStore is whole-document JSON storage keyed by logical path.
// There are no partial or merge semantics: Write replaces the document and
// Update is the only sanctioned way to mutate shared documents.
type DocumentStore interface {
	// Read returns the document, or found=false when the backend has no
	// object for the key. "Not found" is never an error.
	Read(ctx context.Context, key string) (json.RawMessage, bool, error)
	// Write overwrites the document wholesale. Reserved for single-owner
	// replacement (index rebuild); everything else goes through Update.
	Write(ctx context.Context, key string, doc json.RawMessage) error
	// Update acquires the per-key lock, reads the current document (or
	// def when absent), applies fn and writes the result back.
	Update(ctx context.Context, key string, def json.RawMessage, fn func(json.RawMessage) (json.RawMessage, error)) (json.RawMessage, error)
	// WithRetry runs op with exponential backoff and jitter, retrying
	// transient backend faults.
	WithRetry(ctx context.Context, name string, op func() error) error
}

// LockManager provides short-lived mutual exclusion per resource key.
// TTL auto-expiry is a deadlock safety valve for crashed holders, not a
// correctness mechanism.
type LockManager interface {
	Acquire(ctx context.Context, resourceID string, timeout time.Duration) error
	Release(resourceID string)
	// WithLock guarantees release on every exit path of fn.
	WithLock(ctx context.Context, resourceID string, timeout time.Duration, fn func() error) error
}
