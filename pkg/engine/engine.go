package engine

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/observability"
)

// IDFunc generates an id with the given prefix.
type IDFunc func(prefix string) string

// EdgeIDPrefix prefixes ids generated by Connect.
const EdgeIDPrefix = "edge"

// maxIDAttempts bounds regeneration when a custom IDFunc collides.
const maxIDAttempts = 8

// NewID returns "<prefix>-<uuidv7>". Ids sort by creation time.
func NewID(prefix string) string {
	return prefix + "-" + uuid.Must(uuid.NewV7()).String()
}

// Engine holds the live snapshot of one editing session.
//
// All methods are safe for concurrent use; every call completes its
// mutation under a single lock, so readers never observe a half-applied
// batch.
type Engine struct {
	mu    sync.Mutex
	nodes []chart.Node
	edges []chart.Edge
	newID IDFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDFunc overrides the id generator. Defaults to [NewID].
func WithIDFunc(fn IDFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{newID: NewID}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ApplyNodeChanges applies a node batch and, in the same critical section,
// drops edges whose endpoints no longer exist.
func (e *Engine) ApplyNodeChanges(changes []NodeChange) {
	if len(changes) == 0 {
		return
	}
	start := time.Now()

	e.mu.Lock()
	e.nodes = ApplyNodeChanges(e.nodes, changes)
	var pruned int
	e.edges, pruned = pruneEdges(e.nodes, e.edges)
	e.mu.Unlock()

	if pruned > 0 {
		observability.Engine().OnPrune(pruned)
	}
	observability.Engine().OnApply(observability.BatchNodes, len(changes), time.Since(start))
}

// ApplyEdgeChanges applies an edge batch. Added edges whose endpoints do
// not exist are dropped.
func (e *Engine) ApplyEdgeChanges(changes []EdgeChange) {
	if len(changes) == 0 {
		return
	}
	start := time.Now()

	e.mu.Lock()
	edges := ApplyEdgeChanges(e.edges, changes)
	e.edges, _ = pruneEdges(e.nodes, edges)
	e.mu.Unlock()

	observability.Engine().OnApply(observability.BatchEdges, len(changes), time.Since(start))
}

// Connect adds an edge for c with a freshly generated id.
// Returns false if either endpoint does not exist. Self-loops and repeated
// connections between the same pair are allowed; each gets its own edge.
func (e *Engine) Connect(c Connection) (chart.Edge, bool) {
	start := time.Now()

	e.mu.Lock()
	if indexOfNode(e.nodes, c.Source) < 0 || indexOfNode(e.nodes, c.Target) < 0 {
		e.mu.Unlock()
		return chart.Edge{}, false
	}
	id, ok := e.freshID(EdgeIDPrefix)
	if !ok {
		e.mu.Unlock()
		return chart.Edge{}, false
	}
	edge := chart.Edge{
		ID:           id,
		Source:       c.Source,
		Target:       c.Target,
		SourceHandle: c.SourceHandle,
		TargetHandle: c.TargetHandle,
	}
	e.edges = append(slices.Clip(e.edges), edge)
	e.mu.Unlock()

	observability.Engine().OnApply(observability.BatchConnect, 1, time.Since(start))
	return edge, true
}

// NewNodeID returns an id with the given prefix that no live node or edge
// uses. Returns "" if the generator keeps colliding.
func (e *Engine) NewNodeID(prefix string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, _ := e.freshID(prefix)
	return id
}

// freshID must be called with e.mu held.
func (e *Engine) freshID(prefix string) (string, bool) {
	for range maxIDAttempts {
		id := e.newID(prefix)
		if validID(id) && indexOfNode(e.nodes, id) < 0 && indexOfEdge(e.edges, id) < 0 {
			return id, true
		}
	}
	return "", false
}

// Snapshot returns a copy of the live state. The returned slices may be
// modified freely; maps inside nodes are shared and read-only.
func (e *Engine) Snapshot() chart.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return chart.Snapshot{Nodes: slices.Clone(e.nodes), Edges: slices.Clone(e.edges)}
}

// Replace swaps the whole state for s. Nodes without an id or payload and
// repeated node ids are dropped (first wins), then edges are normalized
// the same way and dangling edges removed.
func (e *Engine) Replace(s chart.Snapshot) {
	start := time.Now()

	nodes := make([]chart.Node, 0, len(s.Nodes))
	seen := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if !validID(n.ID) || n.Data == nil || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		nodes = append(nodes, n)
	}

	edges := make([]chart.Edge, 0, len(s.Edges))
	seenEdge := make(map[string]bool, len(s.Edges))
	for _, ed := range s.Edges {
		if !validID(ed.ID) || seenEdge[ed.ID] || !seen[ed.Source] || !seen[ed.Target] {
			continue
		}
		seenEdge[ed.ID] = true
		edges = append(edges, ed)
	}

	e.mu.Lock()
	e.nodes, e.edges = nodes, edges
	e.mu.Unlock()

	observability.Engine().OnApply(observability.BatchReplace, len(nodes)+len(edges), time.Since(start))
}

// SetNodeField updates one payload field of a node in place. Identity,
// type, position and every other field are preserved. Returns false if
// the node does not exist.
//
// The value is coerced by the payload: a non-numeric font size becomes 0
// and a non-boolean contact flag becomes false. Unknown field names are
// stored in the payload's extra fields. A department's width or height
// is a resize: the node's measured size and style follow the payload.
func (e *Engine) SetNodeField(id, field string, value any) bool {
	start := time.Now()

	e.mu.Lock()
	i := indexOfNode(e.nodes, id)
	if i < 0 || field == "" {
		e.mu.Unlock()
		return false
	}
	nodes := slices.Clone(e.nodes)
	nodes[i].Data = nodes[i].Data.WithField(field, value)
	if d, ok := nodes[i].Department(); ok && (field == chart.FieldWidth || field == chart.FieldHeight) {
		nodes[i] = resized(nodes[i], d.Width, d.Height)
	}
	e.nodes = nodes
	e.mu.Unlock()

	observability.Engine().OnApply(observability.BatchField, 1, time.Since(start))
	return true
}

// ToggleHidden flips the hidden flag of every node matching match and
// returns how many were flipped. Applying the same toggle twice restores
// the original state.
func (e *Engine) ToggleHidden(match func(chart.Node) bool) int {
	start := time.Now()

	e.mu.Lock()
	nodes := slices.Clone(e.nodes)
	flipped := 0
	for i := range nodes {
		if match(nodes[i]) {
			nodes[i].Hidden = !nodes[i].Hidden
			flipped++
		}
	}
	e.nodes = nodes
	e.mu.Unlock()

	observability.Engine().OnApply(observability.BatchToggle, flipped, time.Since(start))
	return flipped
}

// Node returns the live node with the given id.
func (e *Engine) Node(id string) (chart.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := indexOfNode(e.nodes, id); i >= 0 {
		return e.nodes[i], true
	}
	return chart.Node{}, false
}

// Edge returns the live edge with the given id.
func (e *Engine) Edge(id string) (chart.Edge, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := indexOfEdge(e.edges, id); i >= 0 {
		return e.edges[i], true
	}
	return chart.Edge{}, false
}

// Len returns the number of live nodes.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.nodes)
}

// EdgeCount returns the number of live edges.
func (e *Engine) EdgeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.edges)
}
