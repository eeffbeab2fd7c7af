package chart

import (
	"maps"
	"slices"
)

// NodeType is the type tag of a node.
type NodeType string

// Node types.
const (
	TypeText       NodeType = "text"
	TypeImage      NodeType = "image"
	TypePerson     NodeType = "person"
	TypeDepartment NodeType = "department"
)

// Types lists every node type in display order.
var Types = []NodeType{TypeText, TypeImage, TypePerson, TypeDepartment}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool { return slices.Contains(Types, t) }

// Position is a point in canvas coordinates.
type Position struct {
	X, Y float64
}

// Add returns the component-wise sum of p and q.
func (p Position) Add(q Position) Position { return Position{X: p.X + q.X, Y: p.Y + q.Y} }

// Style holds presentation hints (width, height, background, ...).
// Keys follow CSS property names in camelCase.
type Style map[string]any

// =============================================================================
// Node
// =============================================================================

// Node is a vertex on the canvas.
//
// The zero value is not usable: ID and Data must be set.
type Node struct {
	ID       string   // Unique, immutable identifier
	Position Position // Relative to the parent when ParentID is set
	ParentID string   // Department this node is nested in (optional)
	Data     Payload  // Type-specific record; determines Type()
	Style    Style    // Presentation hints (optional)
	Hidden   bool     // Set only by the bulk visibility toggle
	Selected bool     // Selection state reported by the renderer

	// Width and Height are the measured dimensions reported by the renderer.
	// Zero means not yet measured.
	Width, Height float64

	// Extra holds unknown persisted fields, preserved verbatim.
	Extra map[string]any
}

// Type returns the node's type tag, derived from its payload.
// Returns the empty string if Data is nil.
func (n Node) Type() NodeType {
	if n.Data == nil {
		return ""
	}
	return n.Data.Kind()
}

// IsDepartment reports whether the node is a department container.
func (n Node) IsDepartment() bool { return n.Type() == TypeDepartment }

// Person returns the node's person payload, if it is a person node.
func (n Node) Person() (PersonData, bool) {
	p, ok := n.Data.(PersonData)
	return p, ok
}

// Department returns the node's department payload, if it is a department node.
func (n Node) Department() (DepartmentData, bool) {
	d, ok := n.Data.(DepartmentData)
	return d, ok
}

// =============================================================================
// Edge
// =============================================================================

// Edge connects two nodes. Handles name the anchor points on either end.
type Edge struct {
	ID           string
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
	Selected     bool

	// Extra holds unknown persisted fields, preserved verbatim.
	Extra map[string]any
}

// IsSelfLoop reports whether the edge starts and ends on the same node.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// Touches reports whether id is one of the edge's endpoints.
func (e Edge) Touches(id string) bool { return e.Source == id || e.Target == id }

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is the complete set of nodes and edges at one instant.
type Snapshot struct {
	Nodes []Node
	Edges []Edge
}

// Clone returns a copy of s whose slices can be modified independently.
// Maps inside nodes and edges are shared.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Nodes: slices.Clone(s.Nodes), Edges: slices.Clone(s.Edges)}
}

// Node returns the node with the given ID.
func (s Snapshot) Node(id string) (Node, bool) {
	i := slices.IndexFunc(s.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return s.Nodes[i], true
}

// NodeIDs returns the IDs of all nodes in order.
func (s Snapshot) NodeIDs() []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Children returns the nodes whose ParentID is parentID, in order.
func (s Snapshot) Children(parentID string) []Node {
	var out []Node
	for _, n := range s.Nodes {
		if n.ParentID == parentID {
			out = append(out, n)
		}
	}
	return out
}

// AbsolutePosition resolves a node's canvas position by walking up its
// ParentID chain. Unresolved parents contribute nothing. The walk stops
// after len(s.Nodes) steps so a nesting cycle cannot loop forever.
func (s Snapshot) AbsolutePosition(id string) Position {
	index := make(map[string]Node, len(s.Nodes))
	for _, n := range s.Nodes {
		index[n.ID] = n
	}
	n, ok := index[id]
	if !ok {
		return Position{}
	}
	pos := n.Position
	for steps := 0; n.ParentID != "" && steps < len(s.Nodes); steps++ {
		parent, ok := index[n.ParentID]
		if !ok {
			break
		}
		pos = pos.Add(parent.Position)
		n = parent
	}
	return pos
}

// CountByType returns the number of nodes of each type.
func (s Snapshot) CountByType() map[NodeType]int {
	counts := make(map[NodeType]int, len(Types))
	for _, n := range s.Nodes {
		counts[n.Type()]++
	}
	return counts
}

// Equal reports whether two snapshots are structurally equal.
func (s Snapshot) Equal(o Snapshot) bool {
	return slices.EqualFunc(s.Nodes, o.Nodes, Node.Equal) &&
		slices.EqualFunc(s.Edges, o.Edges, Edge.Equal)
}

// Equal reports whether two nodes are structurally equal.
func (n Node) Equal(o Node) bool {
	return n.ID == o.ID &&
		n.Position == o.Position &&
		n.ParentID == o.ParentID &&
		n.Hidden == o.Hidden &&
		n.Selected == o.Selected &&
		n.Width == o.Width &&
		n.Height == o.Height &&
		payloadEqual(n.Data, o.Data) &&
		anyMapEqual(n.Style, o.Style) &&
		anyMapEqual(n.Extra, o.Extra)
}

// Equal reports whether two edges are structurally equal.
func (e Edge) Equal(o Edge) bool {
	return e.ID == o.ID &&
		e.Source == o.Source &&
		e.Target == o.Target &&
		e.SourceHandle == o.SourceHandle &&
		e.TargetHandle == o.TargetHandle &&
		e.Selected == o.Selected &&
		anyMapEqual(e.Extra, o.Extra)
}

func anyMapEqual[M ~map[string]any](a, b M) bool {
	if len(a) != len(b) {
		return false
	}
	return maps.EqualFunc(a, b, valueEqual)
}
