package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v4"

	"github.com/feniix/family-gallery-sub000/internal/config"
	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

const contentTypeJSON = "application/json"

// Store reads and writes whole JSON documents on an object store. Update
// is the only sanctioned mutation path for shared documents: it serializes
// read-modify-write cycles through the per-key lock so concurrent writers
// within one process cannot lose updates.
type Store struct {
	objects port.ObjectStore
	locks   port.LockManager
	cfg     config.StoreConfig
	logger  *slog.Logger
}

// NewStore creates a document store over the given object backend
func NewStore(objects port.ObjectStore, locks port.LockManager, cfg config.StoreConfig, logger *slog.Logger) *Store {
	return &Store{objects: objects, locks: locks, cfg: cfg, logger: logger}
}

var _ port.DocumentStore = (*Store)(nil)

// Read returns the document for key, or found=false when the backend has
// no such object
func (s *Store) Read(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var doc json.RawMessage
	var found bool

	err := s.WithRetry(ctx, "read "+key, func() error {
		data, ok, err := s.objects.GetObject(ctx, key)
		if err != nil {
			return err
		}
		doc, found = data, ok
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return doc, found, nil
}

// Write overwrites the document wholesale
func (s *Store) Write(ctx context.Context, key string, doc json.RawMessage) error {
	return s.WithRetry(ctx, "write "+key, func() error {
		return s.objects.PutObject(ctx, key, doc, contentTypeJSON)
	})
}

// Update acquires the per-key lock, reads the current document (def when
// absent), applies fn and writes the result back. Returns the written
// document.
func (s *Store) Update(ctx context.Context, key string, def json.RawMessage, fn func(json.RawMessage) (json.RawMessage, error)) (json.RawMessage, error) {
	var out json.RawMessage

	err := s.locks.WithLock(ctx, key, s.cfg.LockTimeout, func() error {
		current, found, err := s.Read(ctx, key)
		if err != nil {
			return err
		}
		if !found {
			current = def
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		if err := s.Write(ctx, key, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WithRetry runs op with exponential backoff plus jitter. Only transient
// backend faults are retried; the last error is surfaced wrapped with the
// attempt count.
func (s *Store) WithRetry(ctx context.Context, name string, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.RetryBaseDelay
	bo.RandomizationFactor = 0.3
	bo.Multiplier = 2

	attempts := 0
	exhausted := false

	err := backoff.Retry(func() error {
		attempts++
		err := op()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			return backoff.Permanent(err)
		}
		if attempts >= s.cfg.RetryAttempts {
			exhausted = true
			return backoff.Permanent(err)
		}
		s.logger.Warn("retrying store operation", "op", name, "attempt", attempts, "error", err)
		return err
	}, backoff.WithContext(bo, ctx))

	if err != nil && exhausted {
		return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, err)
	}
	return err
}
