package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/feniix/family-gallery-sub000/internal/core/port"
)

// Get reads and decodes a typed document
func Get[T any](ctx context.Context, store port.DocumentStore, key string) (T, bool, error) {
	var v T

	raw, found, err := store.Read(ctx, key)
	if err != nil || !found {
		return v, found, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, true, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

// Put encodes and writes a typed document wholesale
func Put[T any](ctx context.Context, store port.DocumentStore, key string, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Write(ctx, key, raw)
}

// Mutate runs a typed read-modify-write through the store's Update gate.
// fn receives the current document (or def when absent) and mutates it in
// place.
func Mutate[T any](ctx context.Context, store port.DocumentStore, key string, def T, fn func(*T) error) (T, error) {
	var out T

	defRaw, err := json.Marshal(def)
	if err != nil {
		return out, fmt.Errorf("encode default %s: %w", key, err)
	}

	raw, err := store.Update(ctx, key, defRaw, func(current json.RawMessage) (json.RawMessage, error) {
		var doc T
		if err := json.Unmarshal(current, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		if err := fn(&doc); err != nil {
			return nil, err
		}
		return json.Marshal(doc)
	})
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}
