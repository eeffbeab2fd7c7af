package engine

import "github.com/matzehuels/orgchart/pkg/chart"

// =============================================================================
// Node Changes
// =============================================================================

// NodeChange is one element of a node change batch.
//
// The interface is sealed; the variants are [AddNode], [RemoveNode],
// [MoveNode], [ResizeNode] and [SelectNode].
type NodeChange interface {
	nodeChange()
}

// AddNode appends a node. Ignored if the id is empty or already taken,
// or if the node has no payload.
type AddNode struct {
	Node chart.Node
}

// RemoveNode deletes the node with the given id.
type RemoveNode struct {
	ID string
}

// MoveNode sets a node's position, relative to its parent if it has one.
type MoveNode struct {
	ID       string
	Position chart.Position
}

// ResizeNode records a node's dimensions. For departments the container
// extent in the payload and style is updated too.
type ResizeNode struct {
	ID            string
	Width, Height float64
}

// SelectNode sets a node's selection flag.
type SelectNode struct {
	ID       string
	Selected bool
}

func (AddNode) nodeChange()    {}
func (RemoveNode) nodeChange() {}
func (MoveNode) nodeChange()   {}
func (ResizeNode) nodeChange() {}
func (SelectNode) nodeChange() {}

// =============================================================================
// Edge Changes
// =============================================================================

// EdgeChange is one element of an edge change batch.
//
// The interface is sealed; the variants are [AddEdge], [RemoveEdge] and
// [SelectEdge].
type EdgeChange interface {
	edgeChange()
}

// AddEdge appends an edge. Ignored if the id is empty or already taken.
type AddEdge struct {
	Edge chart.Edge
}

// RemoveEdge deletes the edge with the given id.
type RemoveEdge struct {
	ID string
}

// SelectEdge sets an edge's selection flag.
type SelectEdge struct {
	ID       string
	Selected bool
}

func (AddEdge) edgeChange()    {}
func (RemoveEdge) edgeChange() {}
func (SelectEdge) edgeChange() {}

// =============================================================================
// Connection
// =============================================================================

// Connection is a request to link two nodes, as reported by a renderer
// when the user drags from one handle to another.
type Connection struct {
	Source       string
	Target       string
	SourceHandle string
	TargetHandle string
}
