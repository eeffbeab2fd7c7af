package storage

import "context"

// Store is a key-value store holding encoded snapshots.
//
// Get returns (nil, false, nil) when the key does not exist. Implementations
// must be safe for concurrent use.
type Store interface {
	// Get retrieves the value stored under key.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}

// Backend names reported by the built-in stores.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendNull   = "null"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the selectable backend names.
var Backends = []string{BackendFile, BackendMemory, BackendRedis, BackendMongo}

// named is implemented by stores that report a backend name.
type named interface {
	Backend() string
}

// BackendName returns the backend name of s, or "custom" for stores that
// do not report one.
func BackendName(s Store) string {
	if n, ok := s.(named); ok {
		return n.Backend()
	}
	return "custom"
}
