package graph

import (
	"encoding/json"
	"maps"
)

// =============================================================================
// Graph - Snapshot Serialization
// =============================================================================

// Graph is the canonical serialization format for chart snapshots.
// Used for persistence, the seed command and cross-tool compatibility.
//
// The format is human-readable and designed for round-trip fidelity:
// fields this package does not recognize are kept in Extra and written
// back unchanged.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// =============================================================================
// Node
// =============================================================================

// Node is the serialized form of a chart node.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data"`
	ParentID string         `json:"parentId,omitempty"`
	Style    map[string]any `json:"style,omitempty"`
	Hidden   bool           `json:"hidden,omitempty"`
	Selected bool           `json:"selected,omitempty"`
	Width    float64        `json:"width,omitempty"`
	Height   float64        `json:"height,omitempty"`

	// Extra holds unrecognized top-level keys.
	Extra map[string]any `json:"-"`
}

// legacyParentKey is the parent field name used by older editor versions.
const legacyParentKey = "parentNode"

var nodeKeys = []string{
	"id", "type", "position", "data", "parentId", legacyParentKey,
	"style", "hidden", "selected", "width", "height",
}

// MarshalJSON writes the known fields merged over Extra.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	return marshalWithExtra(plain(n), n.Extra)
}

// UnmarshalJSON reads the known fields and collects the rest into Extra.
// A legacy "parentNode" key is accepted when "parentId" is absent.
func (n *Node) UnmarshalJSON(b []byte) error {
	type plain Node
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	rest, err := unknownKeys(b, nodeKeys)
	if err != nil {
		return err
	}
	if p.ParentID == "" {
		var legacy struct {
			ParentNode string `json:"parentNode"`
		}
		if err := json.Unmarshal(b, &legacy); err == nil {
			p.ParentID = legacy.ParentNode
		}
	}
	p.Extra = rest
	*n = Node(p)
	return nil
}

// =============================================================================
// Edge
// =============================================================================

// Edge is the serialized form of a chart edge.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
	Selected     bool   `json:"selected,omitempty"`

	// Extra holds unrecognized keys.
	Extra map[string]any `json:"-"`
}

var edgeKeys = []string{"id", "source", "target", "sourceHandle", "targetHandle", "selected"}

// MarshalJSON writes the known fields merged over Extra.
func (e Edge) MarshalJSON() ([]byte, error) {
	type plain Edge
	return marshalWithExtra(plain(e), e.Extra)
}

// UnmarshalJSON reads the known fields and collects the rest into Extra.
func (e *Edge) UnmarshalJSON(b []byte) error {
	type plain Edge
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	rest, err := unknownKeys(b, edgeKeys)
	if err != nil {
		return err
	}
	p.Extra = rest
	*e = Edge(p)
	return nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// marshalWithExtra encodes v and, when extra is non-empty, merges v's keys
// over extra. Known keys always win.
func marshalWithExtra(v any, extra map[string]any) ([]byte, error) {
	known, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return known, err
	}
	var merged map[string]any
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(extra)+len(merged))
	maps.Copy(out, extra)
	maps.Copy(out, merged)
	return json.Marshal(out)
}

// unknownKeys decodes b as an object and returns the keys not in known.
// Returns nil if there are none.
func unknownKeys(b []byte, known []string) (map[string]any, error) {
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}
