package engine

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/orgchart/pkg/chart"
	pkgerrors "github.com/matzehuels/orgchart/pkg/errors"
)

// ApplyNodeChanges folds changes over current in order and returns the
// resulting node list. current is never modified. Changes that reference
// unknown ids, or that are malformed, are skipped.
//
// Edges are not touched; callers that remove nodes must prune edges
// themselves. [Engine.ApplyNodeChanges] does this automatically.
func ApplyNodeChanges(current []chart.Node, changes []NodeChange) []chart.Node {
	out := slices.Clone(current)
	for _, c := range changes {
		out = applyNodeChange(out, c)
	}
	return out
}

func applyNodeChange(nodes []chart.Node, c NodeChange) []chart.Node {
	switch c := c.(type) {
	case AddNode:
		if !validID(c.Node.ID) || c.Node.Data == nil || indexOfNode(nodes, c.Node.ID) >= 0 {
			return nodes
		}
		return append(nodes, c.Node)

	case RemoveNode:
		if i := indexOfNode(nodes, c.ID); i >= 0 {
			return slices.Delete(nodes, i, i+1)
		}

	case MoveNode:
		if !finite(c.Position.X) || !finite(c.Position.Y) {
			return nodes
		}
		if i := indexOfNode(nodes, c.ID); i >= 0 {
			nodes[i].Position = c.Position
		}

	case ResizeNode:
		if !validExtent(c.Width) || !validExtent(c.Height) {
			return nodes
		}
		if i := indexOfNode(nodes, c.ID); i >= 0 {
			nodes[i] = resized(nodes[i], c.Width, c.Height)
		}

	case SelectNode:
		if i := indexOfNode(nodes, c.ID); i >= 0 {
			nodes[i].Selected = c.Selected
		}
	}
	return nodes
}

// resized returns n with new measured dimensions. A department's payload
// and style carry its extent, so both are rewritten.
func resized(n chart.Node, w, h float64) chart.Node {
	n.Width, n.Height = w, h
	d, ok := n.Department()
	if !ok {
		return n
	}
	d.Width, d.Height = w, h
	n.Data = d

	style := make(chart.Style, len(n.Style)+2)
	maps.Copy(style, n.Style)
	style["width"] = w
	style["height"] = h
	n.Style = style
	return n
}

// ApplyEdgeChanges folds changes over current in order and returns the
// resulting edge list. current is never modified. Endpoints are not
// checked; [Engine.ApplyEdgeChanges] does that.
func ApplyEdgeChanges(current []chart.Edge, changes []EdgeChange) []chart.Edge {
	out := slices.Clone(current)
	for _, c := range changes {
		out = applyEdgeChange(out, c)
	}
	return out
}

func applyEdgeChange(edges []chart.Edge, c EdgeChange) []chart.Edge {
	switch c := c.(type) {
	case AddEdge:
		if !validID(c.Edge.ID) || indexOfEdge(edges, c.Edge.ID) >= 0 {
			return edges
		}
		return append(edges, c.Edge)

	case RemoveEdge:
		if i := indexOfEdge(edges, c.ID); i >= 0 {
			return slices.Delete(edges, i, i+1)
		}

	case SelectEdge:
		if i := indexOfEdge(edges, c.ID); i >= 0 {
			edges[i].Selected = c.Selected
		}
	}
	return edges
}

// =============================================================================
// Helpers
// =============================================================================

// validID reports whether id can name a node or edge: non-empty, bounded
// and free of whitespace and control characters.
func validID(id string) bool { return pkgerrors.ValidateNodeID(id) == nil }

func indexOfNode(nodes []chart.Node, id string) int {
	return slices.IndexFunc(nodes, func(n chart.Node) bool { return n.ID == id })
}

func indexOfEdge(edges []chart.Edge, id string) int {
	return slices.IndexFunc(edges, func(e chart.Edge) bool { return e.ID == id })
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func validExtent(f float64) bool { return finite(f) && f >= 0 }

// pruneEdges drops edges whose endpoints are not in nodes and returns the
// kept edges with the number dropped.
func pruneEdges(nodes []chart.Node, edges []chart.Edge) ([]chart.Edge, int) {
	live := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		live[n.ID] = true
	}
	kept := edges[:0:0]
	for _, e := range edges {
		if live[e.Source] && live[e.Target] {
			kept = append(kept, e)
		}
	}
	return kept, len(edges) - len(kept)
}
