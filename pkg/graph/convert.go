package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/orgchart/pkg/chart"
)

// Validation errors returned by ToSnapshot. A graph that fails validation
// is corrupt as a whole; no partial snapshot is produced.
var (
	ErrMissingID   = errors.New("node without id")
	ErrUnknownType = errors.New("unknown node type")
	ErrDuplicateID = errors.New("duplicate node id")
)

// styleOpacity is derived from the person payload and never persisted.
const styleOpacity = "opacity"

// =============================================================================
// Snapshot ↔ Graph Conversion
// =============================================================================

// FromSnapshot converts a snapshot to its serialization format.
// Node and edge order is preserved.
func FromSnapshot(s chart.Snapshot) Graph {
	out := Graph{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: make([]Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		out.Nodes[i] = nodeFromChart(n)
	}
	for i, e := range s.Edges {
		out.Edges[i] = Edge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
			Selected:     e.Selected,
			Extra:        copyMap(e.Extra),
		}
	}
	return out
}

// ToSnapshot converts a Graph to a snapshot.
//
// Returns an error wrapping [ErrMissingID], [ErrUnknownType] or
// [ErrDuplicateID] if any node is invalid. Edges whose endpoints do not
// resolve, edges without an id and repeated edge ids are dropped silently.
func ToSnapshot(g Graph) (chart.Snapshot, error) {
	nodes := make([]chart.Node, 0, len(g.Nodes))
	seen := make(map[string]bool, len(g.Nodes))

	for i, gn := range g.Nodes {
		if gn.ID == "" {
			return chart.Snapshot{}, fmt.Errorf("node %d: %w", i, ErrMissingID)
		}
		if seen[gn.ID] {
			return chart.Snapshot{}, fmt.Errorf("node %s: %w", gn.ID, ErrDuplicateID)
		}
		n, err := nodeToChart(gn)
		if err != nil {
			return chart.Snapshot{}, fmt.Errorf("node %s: %w", gn.ID, err)
		}
		seen[gn.ID] = true
		nodes = append(nodes, n)
	}

	edges := make([]chart.Edge, 0, len(g.Edges))
	seenEdge := make(map[string]bool, len(g.Edges))
	for _, ge := range g.Edges {
		if ge.ID == "" || seenEdge[ge.ID] || !seen[ge.Source] || !seen[ge.Target] {
			continue
		}
		seenEdge[ge.ID] = true
		edges = append(edges, chart.Edge{
			ID:           ge.ID,
			Source:       ge.Source,
			Target:       ge.Target,
			SourceHandle: ge.SourceHandle,
			TargetHandle: ge.TargetHandle,
			Selected:     ge.Selected,
			Extra:        copyMap(ge.Extra),
		})
	}

	return chart.Snapshot{Nodes: nodes, Edges: edges}, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

func nodeFromChart(n chart.Node) Node {
	return Node{
		ID:       n.ID,
		Type:     string(n.Type()),
		Position: Position{X: n.Position.X, Y: n.Position.Y},
		Data:     encodePayload(n.Data),
		ParentID: n.ParentID,
		Style:    copyMap(n.Style),
		Hidden:   n.Hidden,
		Selected: n.Selected,
		Width:    n.Width,
		Height:   n.Height,
		Extra:    copyMap(n.Extra),
	}
}

func nodeToChart(gn Node) (chart.Node, error) {
	typ := chart.NodeType(gn.Type)
	data := typ.Empty()
	if data == nil {
		return chart.Node{}, fmt.Errorf("%w: %q", ErrUnknownType, gn.Type)
	}
	// WithField applies the same coercion the engine uses for edits, and
	// routes unknown keys into the payload's Extra.
	for _, k := range slices.Sorted(maps.Keys(gn.Data)) {
		data = data.WithField(k, gn.Data[k])
	}

	style := copyMap(gn.Style)
	if typ == chart.TypePerson && style != nil {
		delete(style, styleOpacity)
		if len(style) == 0 {
			style = nil
		}
	}

	return chart.Node{
		ID:       gn.ID,
		Position: chart.Position{X: gn.Position.X, Y: gn.Position.Y},
		ParentID: gn.ParentID,
		Data:     data,
		Style:    style,
		Hidden:   gn.Hidden,
		Selected: gn.Selected,
		Width:    gn.Width,
		Height:   gn.Height,
		Extra:    copyMap(gn.Extra),
	}, nil
}

// encodePayload flattens a payload into its data object. Optional fields
// at their zero value are omitted, except an image src, which is written
// as null.
func encodePayload(p chart.Payload) map[string]any {
	out := make(map[string]any)
	if p == nil {
		return out
	}
	maps.Copy(out, p.Extras())
	for _, f := range p.Kind().Fields() {
		v, _ := p.Field(f)
		out[f] = v
	}
	switch p.Kind() {
	case chart.TypeImage:
		if out[chart.FieldSrc] == "" {
			out[chart.FieldSrc] = nil
		}
	case chart.TypeDepartment:
		for _, f := range []string{chart.FieldColor, chart.FieldWidth, chart.FieldHeight} {
			if v := out[f]; v == "" || v == 0.0 {
				delete(out, f)
			}
		}
	}
	return out
}

// copyMap creates a shallow copy of m. Returns nil if m is empty.
func copyMap[M ~map[string]any](m M) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(map[string]any(m))
}
