package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/chart"
	pkgerrors "github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/graph"
	"github.com/matzehuels/orgchart/pkg/observability"
)

// Op names the storage operation recorded in a Status.
type Op string

// Adapter operations.
const (
	OpSave   Op = "save"
	OpLoad   Op = "load"
	OpDelete Op = "delete"
)

// Status describes the most recent adapter operation.
type Status struct {
	Op     Op
	Key    string
	At     time.Time
	Err    error  // nil on success
	Size   int    // encoded bytes written or read
	Digest string // SHA-256 of the encoded snapshot, empty on failure
}

// OK reports whether the operation succeeded.
func (s Status) OK() bool { return s.Err == nil && !s.At.IsZero() }

// Adapter saves and loads snapshots through a Store.
//
// Storage failures never propagate as hard failures: Save returns an
// informational error and Load reports a missing or corrupt value as absent.
// Both are logged and recorded in Status.
type Adapter struct {
	store  Store
	logger *log.Logger
	now    func() time.Time

	mu     sync.Mutex
	status Status
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClock overrides the time source used for Status timestamps.
func WithClock(now func() time.Time) AdapterOption {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAdapter creates an adapter over store.
func NewAdapter(store Store, opts ...AdapterOption) *Adapter {
	a := &Adapter{store: store, logger: log.Default(), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Save encodes s and writes it under key.
// On failure the error is logged, recorded in Status and returned; callers
// may ignore it.
func (a *Adapter) Save(ctx context.Context, key string, s chart.Snapshot) error {
	start := time.Now()
	backend := BackendName(a.store)

	data, err := a.save(ctx, key, s)
	observability.Storage().OnSave(ctx, backend, len(data), time.Since(start), err)

	st := Status{Op: OpSave, Key: key, At: a.now(), Err: err}
	if err == nil {
		st.Size = len(data)
		st.Digest = Hash(data)
		a.logger.Debug("snapshot saved", "key", key, "backend", backend, "nodes", len(s.Nodes), "edges", len(s.Edges), "bytes", len(data))
	} else {
		a.logger.Error("save failed", "key", key, "backend", backend, "err", err)
	}
	a.record(st)
	return err
}

func (a *Adapter) save(ctx context.Context, key string, s chart.Snapshot) ([]byte, error) {
	if err := pkgerrors.ValidateStorageKey(key); err != nil {
		return nil, err
	}
	data, err := graph.Marshal(s)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidFormat, err, "encode snapshot")
	}
	if err := a.store.Set(ctx, key, data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeStorage, err, "save %s", key)
	}
	return data, nil
}

// Load reads and decodes the snapshot stored under key.
// Returns false if the key is absent, unreadable or corrupt; a partially
// decoded snapshot is never returned.
func (a *Adapter) Load(ctx context.Context, key string) (chart.Snapshot, bool) {
	start := time.Now()
	backend := BackendName(a.store)

	s, data, outcome, err := a.load(ctx, key)
	observability.Storage().OnLoad(ctx, backend, outcome, time.Since(start))

	st := Status{Op: OpLoad, Key: key, At: a.now(), Err: err, Size: len(data)}
	switch outcome {
	case observability.LoadHit:
		st.Digest = Hash(data)
		a.logger.Debug("snapshot loaded", "key", key, "backend", backend, "nodes", len(s.Nodes), "edges", len(s.Edges))
	case observability.LoadAbsent:
		a.logger.Debug("no stored snapshot", "key", key, "backend", backend)
	case observability.LoadCorrupt:
		a.logger.Warn("stored snapshot is corrupt, ignoring", "key", key, "backend", backend, "err", err)
	default:
		a.logger.Error("load failed", "key", key, "backend", backend, "err", err)
	}
	a.record(st)

	return s, outcome == observability.LoadHit
}

func (a *Adapter) load(ctx context.Context, key string) (chart.Snapshot, []byte, observability.LoadOutcome, error) {
	if err := pkgerrors.ValidateStorageKey(key); err != nil {
		return chart.Snapshot{}, nil, observability.LoadError, err
	}
	data, ok, err := a.store.Get(ctx, key)
	if err != nil {
		return chart.Snapshot{}, nil, observability.LoadError, pkgerrors.Wrap(pkgerrors.ErrCodeStorage, err, "load %s", key)
	}
	if !ok {
		return chart.Snapshot{}, nil, observability.LoadAbsent, nil
	}
	s, err := graph.Unmarshal(data)
	if err != nil {
		return chart.Snapshot{}, data, observability.LoadCorrupt,
			pkgerrors.Wrap(pkgerrors.ErrCodeCorrupt, fmt.Errorf("%w: %w", ErrCorrupt, err), "load %s", key)
	}
	return s, data, observability.LoadHit, nil
}

// Delete removes the snapshot stored under key.
func (a *Adapter) Delete(ctx context.Context, key string) error {
	err := pkgerrors.ValidateStorageKey(key)
	if err == nil {
		if err = a.store.Delete(ctx, key); err != nil {
			err = pkgerrors.Wrap(pkgerrors.ErrCodeStorage, err, "delete %s", key)
		}
	}
	if err != nil {
		a.logger.Error("delete failed", "key", key, "err", err)
	}
	a.record(Status{Op: OpDelete, Key: key, At: a.now(), Err: err})
	return err
}

// Status returns the outcome of the most recent operation.
// The zero Status means no operation has run yet.
func (a *Adapter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Store returns the underlying store.
func (a *Adapter) Store() Store { return a.store }

// Close closes the underlying store.
func (a *Adapter) Close() error { return a.store.Close() }

func (a *Adapter) record(st Status) {
	a.mu.Lock()
	a.status = st
	a.mu.Unlock()
}
