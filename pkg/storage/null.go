package storage

import "context"

// NullStore is a no-op store that never stores anything.
// Every load misses, so a session on a NullStore always starts from seed data.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// Get always returns a miss.
func (s *NullStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (s *NullStore) Set(ctx context.Context, key string, data []byte) error {
	return nil
}

// Delete does nothing.
func (s *NullStore) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

// Backend returns "null".
func (s *NullStore) Backend() string { return BackendNull }

var _ Store = (*NullStore)(nil)
