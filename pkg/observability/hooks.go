// Package observability provides hooks for metrics and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about graph mutations and storage operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so pkg/engine and
// pkg/storage stay free of any metrics framework. The CLI registers a
// Prometheus implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetStorageHooks(&myStorageHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... apply batch ...
//	observability.Engine().OnApply(observability.BatchNodes, len(changes), time.Since(start))
package observability

import (
	"context"
	"sync"
	"time"
)

// Batch kinds reported by EngineHooks.OnApply.
const (
	BatchNodes   = "nodes"
	BatchEdges   = "edges"
	BatchConnect = "connect"
	BatchReplace = "replace"
	BatchField   = "field"
	BatchToggle  = "toggle"
)

// LoadOutcome classifies the result of a storage load.
type LoadOutcome string

// Load outcomes.
const (
	LoadHit     LoadOutcome = "hit"
	LoadAbsent  LoadOutcome = "absent"
	LoadCorrupt LoadOutcome = "corrupt"
	LoadError   LoadOutcome = "error"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from the graph state engine.
// Engine calls are synchronous and carry no context.
type EngineHooks interface {
	// OnApply records a committed mutation of the given kind.
	OnApply(kind string, changes int, duration time.Duration)

	// OnPrune records edges removed because an endpoint disappeared.
	OnPrune(edges int)
}

// =============================================================================
// Storage Hooks
// =============================================================================

// StorageHooks receives events from the storage adapter.
type StorageHooks interface {
	// OnSave records a save attempt. err is nil on success.
	OnSave(ctx context.Context, backend string, size int, duration time.Duration, err error)

	// OnLoad records a load attempt and how it ended.
	OnLoad(ctx context.Context, backend string, outcome LoadOutcome, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnApply(string, int, time.Duration) {}
func (NoopEngineHooks) OnPrune(int)                        {}

// NoopStorageHooks is a no-op implementation of StorageHooks.
type NoopStorageHooks struct{}

func (NoopStorageHooks) OnSave(context.Context, string, int, time.Duration, error)  {}
func (NoopStorageHooks) OnLoad(context.Context, string, LoadOutcome, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks  EngineHooks  = NoopEngineHooks{}
	storageHooks StorageHooks = NoopStorageHooks{}
	hooksMu      sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any edits.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetStorageHooks registers custom storage hooks.
// This should be called once at application startup before any storage operations.
func SetStorageHooks(h StorageHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storageHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Storage returns the registered storage hooks.
func Storage() StorageHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storageHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	storageHooks = NoopStorageHooks{}
}
