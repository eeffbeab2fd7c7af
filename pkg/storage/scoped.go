package storage

import "context"

// ScopedStore wraps a Store with a key prefix for isolation.
// This is useful when several charts share one Redis database or Mongo
// collection.
//
// Example usage:
//
//	// Per-team namespaces on a shared backend
//	sales := NewScopedStore(redisStore, "team:sales:")
//	ops := NewScopedStore(redisStore, "team:ops:")
type ScopedStore struct {
	inner  Store
	prefix string
}

// NewScopedStore creates a store that prepends prefix to every key.
func NewScopedStore(inner Store, prefix string) *ScopedStore {
	return &ScopedStore{inner: inner, prefix: prefix}
}

// Get retrieves the prefixed key.
func (s *ScopedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Set stores the prefixed key.
func (s *ScopedStore) Set(ctx context.Context, key string, data []byte) error {
	return s.inner.Set(ctx, s.prefix+key, data)
}

// Delete removes the prefixed key.
func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the wrapped store.
func (s *ScopedStore) Close() error { return s.inner.Close() }

// Backend reports the wrapped store's backend.
func (s *ScopedStore) Backend() string { return BackendName(s.inner) }

// Prefix returns the key prefix.
func (s *ScopedStore) Prefix() string { return s.prefix }

var _ Store = (*ScopedStore)(nil)
