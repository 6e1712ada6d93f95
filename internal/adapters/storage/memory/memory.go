package memory

import (
	"context"
	"sync"

	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// Store is a map-backed ObjectStore for tests and local development
type Store struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	putFault map[string]*fault
}

type fault struct {
	err  error
	once bool
}

// NewStore creates an empty in-memory object store
func NewStore() *Store {
	return &Store{
		objects:  make(map[string][]byte),
		putFault: make(map[string]*fault),
	}
}

var _ port.ObjectStore = (*Store)(nil)

func (s *Store) GetObject(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (s *Store) PutObject(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.putFault[key]; ok {
		if f.once {
			delete(s.putFault, key)
		}
		return f.err
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = cp
	return nil
}

func (s *Store) RemoveObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}

// FailPut makes every write to key fail with err; test helper
func (s *Store) FailPut(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putFault[key] = &fault{err: err}
}

// FailPutOnce makes the next write to key fail with err; test helper
func (s *Store) FailPutOnce(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putFault[key] = &fault{err: err, once: true}
}

// Keys returns the stored keys; test helper
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
