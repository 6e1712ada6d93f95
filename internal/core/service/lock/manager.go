package lock

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/feniix/family-gallery-sub000/internal/config"
	"github.com/feniix/family-gallery-sub000/internal/core/domain"
	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

const maxTrackedLocks = 1024

// Manager is an in-process TTL-bounded lock manager. The expirable cache
// drops entries whose holder crashed without releasing; under normal
// operation Release clears them first.
type Manager struct {
	mu       sync.Mutex
	held     *expirable.LRU[string, time.Time]
	ttl      time.Duration
	pollBase time.Duration
	logger   *slog.Logger
}

// NewManager creates a lock manager with the configured TTL
func NewManager(cfg config.LockConfig, logger *slog.Logger) *Manager {
	return &Manager{
		held:     expirable.NewLRU[string, time.Time](maxTrackedLocks, nil, cfg.TTL),
		ttl:      cfg.TTL,
		pollBase: cfg.PollBase,
		logger:   logger,
	}
}

var _ port.LockManager = (*Manager)(nil)

// tryAcquire is the check-and-set primitive: one critical section covers
// both the lookup and the insert.
func (m *Manager) tryAcquire(resourceID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.held.Get(resourceID); taken {
		return false
	}
	m.held.Add(resourceID, time.Now().Add(m.ttl))
	return true
}

// Acquire polls with jittered backoff until the flag is set or timeout
// elapses
func (m *Manager) Acquire(ctx context.Context, resourceID string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		if m.tryAcquire(resourceID) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: could not acquire %q within %s", domain.ErrLockTimeout, resourceID, timeout)
		}

		wait := m.pollBase + rand.N(m.pollBase)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Release clears the flag immediately
func (m *Manager) Release(resourceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held.Remove(resourceID)
}

// WithLock runs fn under the resource lock, releasing on every exit path
func (m *Manager) WithLock(ctx context.Context, resourceID string, timeout time.Duration, fn func() error) error {
	if err := m.Acquire(ctx, resourceID, timeout); err != nil {
		return err
	}
	defer m.Release(resourceID)

	return fn()
}
