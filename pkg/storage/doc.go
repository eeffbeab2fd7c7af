// Package storage persists chart snapshots in key-value stores.
//
// # Stores
//
// [Store] is the minimal key-value contract every backend implements:
//
//   - [FileStore]: one JSON file per key in a directory (CLI default)
//   - [MemoryStore]: process memory, for tests and throwaway sessions
//   - [NullStore]: never stores anything
//   - [RedisStore]: string values in Redis
//   - [MongoStore]: one document per key in a MongoDB collection
//   - [ScopedStore]: prefixes keys of another store
//
// Remote stores retry transient network failures with [RetryWithBackoff].
//
// # Adapter
//
// [Adapter] implements the save/load contract on top of a Store. Snapshots
// are encoded with pkg/graph, so every backend holds the same bytes:
//
//	a := storage.NewAdapter(store, storage.WithLogger(logger))
//	_ = a.Save(ctx, "organizationChart", snap) // error is informational
//	snap, ok := a.Load(ctx, "organizationChart")
//	if !ok {
//	    // absent, unreadable or corrupt: fall back to seed data
//	}
//
// Load never returns a partial snapshot. The outcome of every call is
// logged, reported to the observability storage hooks and kept in
// [Adapter.Status].
package storage
