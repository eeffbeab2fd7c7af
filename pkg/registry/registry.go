package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/orgchart/pkg/chart"
)

// Sentinel errors returned by Commit functions.
var (
	// ErrInvalidValue is returned when a raw edit cannot be converted.
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnknownType is returned when no capability is registered for a type.
	ErrUnknownType = errors.New("unknown node type")
)

// FieldKind describes how a host should present an editable field.
type FieldKind string

// Field kinds.
const (
	KindText   FieldKind = "text"
	KindNumber FieldKind = "number"
	KindBool   FieldKind = "bool"
	KindColor  FieldKind = "color"
	KindImage  FieldKind = "image"
)

// Field describes one editable payload field.
type Field struct {
	Name  string
	Label string
	Kind  FieldKind
}

// CommitFunc converts a raw edit (string draft, bool toggle, file bytes)
// into the value handed to the engine's SetNodeField.
type CommitFunc func(field string, input any) (any, error)

// RenderFunc produces a display summary of a node.
type RenderFunc func(n chart.Node) string

// TemplateFunc builds a new node of the capability's type with the given id.
type TemplateFunc func(id string) chart.Node

// Capability is everything the editor knows about one node type.
type Capability struct {
	Type     chart.NodeType
	Label    string
	Fields   []Field
	Template TemplateFunc
	Commit   CommitFunc
	Render   RenderFunc
}

// EdgeCapability describes an edge type.
type EdgeCapability struct {
	Type   string
	Render func(e chart.Edge) string
}

// DefaultEdgeType is the only edge type.
const DefaultEdgeType = "default"

// Registry maps node types to capabilities. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	nodes map[chart.NodeType]Capability
	edges map[string]EdgeCapability
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		nodes: make(map[chart.NodeType]Capability),
		edges: make(map[string]EdgeCapability),
	}
}

// Register adds or replaces the capability for c.Type.
func (r *Registry) Register(c Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[c.Type] = c
}

// RegisterEdge adds or replaces an edge capability.
func (r *Registry) RegisterEdge(c EdgeCapability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges[c.Type] = c
}

// Lookup returns the capability for t.
func (r *Registry) Lookup(t chart.NodeType) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.nodes[t]
	return c, ok
}

// Edge returns the edge capability for typ. An empty typ means the default.
func (r *Registry) Edge(typ string) (EdgeCapability, bool) {
	if typ == "" {
		typ = DefaultEdgeType
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.edges[typ]
	return c, ok
}

// Types returns the registered node types in sorted order.
func (r *Registry) Types() []chart.NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.nodes))
}

// SetRender replaces the render function of t, keeping the rest of its
// capability. Hosts use this to wrap summaries in their own styling.
func (r *Registry) SetRender(t chart.NodeType, fn RenderFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.nodes[t]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	c.Render = fn
	r.nodes[t] = c
	return nil
}

// Commit converts a raw edit for a node of type t.
func (r *Registry) Commit(t chart.NodeType, field string, input any) (any, error) {
	c, ok := r.Lookup(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if c.Commit == nil {
		return input, nil
	}
	return c.Commit(field, input)
}

// Render summarizes n with its type's render function. Unknown types fall
// back to the node id.
func (r *Registry) Render(n chart.Node) string {
	c, ok := r.Lookup(n.Type())
	if !ok || c.Render == nil {
		return n.ID
	}
	return c.Render(n)
}

// Template builds a new node of type t.
func (r *Registry) Template(t chart.NodeType, id string) (chart.Node, bool) {
	c, ok := r.Lookup(t)
	if !ok || c.Template == nil {
		return chart.Node{}, false
	}
	return c.Template(id), true
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{nodes: maps.Clone(r.nodes), edges: maps.Clone(r.edges)}
}
