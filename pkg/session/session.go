package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/engine"
	pkgerrors "github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/registry"
	"github.com/matzehuels/orgchart/pkg/seed"
	"github.com/matzehuels/orgchart/pkg/storage"
)

// DefaultKey is the storage key used when Config.Key is empty.
const DefaultKey = "organizationChart"

// User-facing save messages.
const (
	SavedMessage      = "組織図が保存されました！"
	SaveFailedMessage = "組織図の保存に失敗しました"
)

// Sentinel errors for editing gestures.
var (
	// ErrNoNode is returned when a gesture names a node that does not exist.
	ErrNoNode = errors.New("no such node")

	// ErrNotEditing is returned when a draft is recorded outside an edit.
	ErrNotEditing = errors.New("node is not being edited")

	// ErrUnknownField is returned when a draft names a field the node's
	// type does not expose.
	ErrUnknownField = errors.New("unknown field")
)

// Origin reports where Start took the initial snapshot from.
type Origin string

// Start origins.
const (
	OriginStored Origin = "stored"
	OriginSeed   Origin = "seed"
)

// SaveResult is the outcome of Session.Save.
type SaveResult struct {
	OK      bool
	Message string
	Err     error
	Status  storage.Status
}

// Config holds the collaborators of a session. Only Store is required.
type Config struct {
	Store    *storage.Adapter
	Key      string
	Registry *registry.Registry
	Logger   *log.Logger
	// Seed builds the snapshot used when nothing is stored. Defaults to
	// the built-in hierarchy.
	Seed   func() chart.Snapshot
	IDFunc engine.IDFunc
}

// Session is one editing session: the live engine plus transient UI state
// (selection, open edits, field drafts).
type Session struct {
	engine *engine.Engine
	store  *storage.Adapter
	key    string
	reg    *registry.Registry
	logger *log.Logger
	seed   func() chart.Snapshot

	mu        sync.Mutex
	selected  string
	drafts    map[string]map[string]any // node id -> field -> raw input
	persisted *chart.Snapshot
	last      SaveResult
}

// New creates a session. The engine starts empty; call Start to load.
func New(cfg Config) (*Session, error) {
	if cfg.Store == nil {
		return nil, pkgerrors.New(pkgerrors.ErrCodeInvalidConfig, "session requires a storage adapter")
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if err := pkgerrors.ValidateStorageKey(cfg.Key); err != nil {
		return nil, err
	}
	if cfg.Registry == nil {
		cfg.Registry = registry.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Seed == nil {
		cfg.Seed = seed.Default
	}
	return &Session{
		engine: engine.New(engine.WithIDFunc(cfg.IDFunc)),
		store:  cfg.Store,
		key:    cfg.Key,
		reg:    cfg.Registry,
		logger: cfg.Logger,
		seed:   cfg.Seed,
		drafts: make(map[string]map[string]any),
	}, nil
}

// =============================================================================
// Lifecycle
// =============================================================================

// Start loads the stored snapshot, replacing the engine state entirely.
// When nothing usable is stored the seed is loaded instead; it stays in
// memory until the first Save.
func (s *Session) Start(ctx context.Context) Origin {
	snap, ok := s.store.Load(ctx, s.key)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = ""
	clear(s.drafts)

	if ok {
		s.engine.Replace(snap)
		stored := s.engine.Snapshot()
		s.persisted = &stored
		s.logger.Debug("loaded stored chart", "key", s.key, "nodes", len(stored.Nodes), "edges", len(stored.Edges))
		return OriginStored
	}

	s.engine.Replace(s.seed())
	s.persisted = nil
	s.logger.Debug("no stored chart, using seed", "key", s.key, "nodes", s.engine.Len())
	return OriginSeed
}

// Save writes the current snapshot under the session key. Failures are
// logged by the adapter and reported in the result; they never abort the
// session.
func (s *Session) Save(ctx context.Context) SaveResult {
	snap := s.engine.Snapshot()
	err := s.store.Save(ctx, s.key, snap)

	res := SaveResult{OK: err == nil, Err: err, Status: s.store.Status()}
	if err == nil {
		res.Message = SavedMessage
	} else {
		res.Message = SaveFailedMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.persisted = &snap
	}
	s.last = res
	return res
}

// LastStatus returns the result of the most recent Save.
func (s *Session) LastStatus() SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Dirty reports whether the live snapshot differs from the last one
// loaded from or written to storage. A seeded session is dirty until saved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	persisted := s.persisted
	s.mu.Unlock()
	if persisted == nil {
		return true
	}
	return !s.engine.Snapshot().Equal(*persisted)
}

// Snapshot returns a copy of the live state.
func (s *Session) Snapshot() chart.Snapshot { return s.engine.Snapshot() }

// Engine returns the session's engine.
func (s *Session) Engine() *engine.Engine { return s.engine }

// Registry returns the session's type registry.
func (s *Session) Registry() *registry.Registry { return s.reg }

// Key returns the storage key.
func (s *Session) Key() string { return s.key }

// =============================================================================
// Selection
// =============================================================================

// ClickNode selects the node with the given id. Selection is transient
// and does not touch the snapshot.
func (s *Session) ClickNode(id string) bool {
	if _, ok := s.engine.Node(id); !ok {
		return false
	}
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
	return true
}

// ClickPane clears the selection.
func (s *Session) ClickPane() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()
}

// Selected returns the selected node, if any still exists.
func (s *Session) Selected() (chart.Node, bool) {
	s.mu.Lock()
	id := s.selected
	s.mu.Unlock()
	if id == "" {
		return chart.Node{}, false
	}
	return s.engine.Node(id)
}

// =============================================================================
// Adding nodes
// =============================================================================

// IDPrefix returns the id prefix of generated nodes of type t.
func IDPrefix(t chart.NodeType) string {
	if t == chart.TypeDepartment {
		return "dept"
	}
	return string(t)
}

// AddText adds a text box with placeholder content.
func (s *Session) AddText() (chart.Node, bool) { return s.Add(chart.TypeText) }

// AddImage adds an empty image box.
func (s *Session) AddImage() (chart.Node, bool) { return s.Add(chart.TypeImage) }

// AddDepartment adds a 300x200 department container.
func (s *Session) AddDepartment() (chart.Node, bool) { return s.Add(chart.TypeDepartment) }

// AddPerson adds an uncontacted person card.
func (s *Session) AddPerson() (chart.Node, bool) { return s.Add(chart.TypePerson) }

// Add adds a node of type t built from its registered template.
func (s *Session) Add(t chart.NodeType) (chart.Node, bool) {
	id := s.engine.NewNodeID(IDPrefix(t))
	if id == "" {
		s.logger.Warn("could not generate a node id", "type", t)
		return chart.Node{}, false
	}
	n, ok := s.reg.Template(t, id)
	if !ok {
		return chart.Node{}, false
	}
	s.engine.ApplyNodeChanges([]engine.NodeChange{engine.AddNode{Node: n}})
	s.logger.Debug("added node", "id", id, "type", t)
	return s.engine.Node(id)
}

// ToggleUncontactedVisibility flips the hidden flag of every person not
// yet contacted and returns how many were flipped. Pressing it twice
// restores the previous visibility.
func (s *Session) ToggleUncontactedVisibility() int {
	return s.engine.ToggleHidden(func(n chart.Node) bool {
		p, ok := n.Person()
		return ok && !p.IsContacted
	})
}

// =============================================================================
// Canvas gestures
// =============================================================================

// Drag moves a node to pos, relative to its parent.
func (s *Session) Drag(id string, pos chart.Position) bool {
	if _, ok := s.engine.Node(id); !ok {
		return false
	}
	s.engine.ApplyNodeChanges([]engine.NodeChange{engine.MoveNode{ID: id, Position: pos}})
	return true
}

// Resize sets the measured extent of a node.
func (s *Session) Resize(id string, width, height float64) bool {
	if _, ok := s.engine.Node(id); !ok {
		return false
	}
	s.engine.ApplyNodeChanges([]engine.NodeChange{engine.ResizeNode{ID: id, Width: width, Height: height}})
	return true
}

// Delete removes a node and its incident edges. Selection and drafts of
// the node are dropped.
func (s *Session) Delete(id string) bool {
	if _, ok := s.engine.Node(id); !ok {
		return false
	}
	s.engine.ApplyNodeChanges([]engine.NodeChange{engine.RemoveNode{ID: id}})

	s.mu.Lock()
	if s.selected == id {
		s.selected = ""
	}
	delete(s.drafts, id)
	s.mu.Unlock()
	return true
}

// Connect adds an edge between two existing nodes.
func (s *Session) Connect(c engine.Connection) (chart.Edge, bool) {
	return s.engine.Connect(c)
}

// DisconnectEdge removes an edge.
func (s *Session) DisconnectEdge(id string) bool {
	if _, ok := s.engine.Edge(id); !ok {
		return false
	}
	s.engine.ApplyEdgeChanges([]engine.EdgeChange{engine.RemoveEdge{ID: id}})
	return true
}

// =============================================================================
// Field edits
// =============================================================================

// BeginEdit opens an edit on a node. Drafts are kept until CommitEdits or
// CancelEdit.
func (s *Session) BeginEdit(id string) bool {
	if _, ok := s.engine.Node(id); !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		s.drafts[id] = make(map[string]any)
	}
	return true
}

// Editing reports whether an edit is open on a node.
func (s *Session) Editing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.drafts[id]
	return ok
}

// Draft records a raw value for a field of a node being edited.
func (s *Session) Draft(id, field string, input any) error {
	n, ok := s.engine.Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoNode, id)
	}
	if !slices.Contains(n.Type().Fields(), field) {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, n.Type(), field)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotEditing, id)
	}
	d[field] = input
	return nil
}

// Drafts returns the pending drafts of a node.
func (s *Session) Drafts(id string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.drafts[id])
}

// CommitEdits closes the edit on a node and applies every draft through
// the registry. A draft the registry rejects is logged and leaves the
// field's previous value in place; the joined rejections are returned.
func (s *Session) CommitEdits(id string) error {
	s.mu.Lock()
	drafts := s.drafts[id]
	delete(s.drafts, id)
	s.mu.Unlock()

	var errs []error
	for _, field := range slices.Sorted(maps.Keys(drafts)) {
		if err := s.SetField(id, field, drafts[field]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CancelEdit closes the edit on a node and discards its drafts.
func (s *Session) CancelEdit(id string) {
	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()
}

// SetField commits a single raw value through the node type's capability.
func (s *Session) SetField(id, field string, input any) error {
	n, ok := s.engine.Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoNode, id)
	}
	value, err := s.reg.Commit(n.Type(), field, input)
	if err != nil {
		s.logger.Warn("edit rejected, keeping previous value", "id", id, "field", field, "err", err)
		return fmt.Errorf("%s.%s: %w", id, field, err)
	}
	s.engine.SetNodeField(id, field, value)
	return nil
}

// ToggleContacted flips the contact flag of a person card.
func (s *Session) ToggleContacted(id string) bool {
	n, ok := s.engine.Node(id)
	if !ok {
		return false
	}
	p, ok := n.Person()
	if !ok {
		return false
	}
	return s.SetField(id, chart.FieldIsContacted, !p.IsContacted) == nil
}

// UploadImage stores image bytes in an image node as a data URI.
func (s *Session) UploadImage(id string, data []byte) error {
	n, ok := s.engine.Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoNode, id)
	}
	if n.Type() != chart.TypeImage {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, n.Type(), chart.FieldSrc)
	}
	return s.SetField(id, chart.FieldSrc, data)
}
