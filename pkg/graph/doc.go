// Package graph provides the wire format for organization chart snapshots.
//
// This package defines the canonical JSON encoding of a [chart.Snapshot],
// used by every storage backend, the seed command and files on disk.
//
// # Architecture
//
// The package sits at the serialization boundary between the in-memory
// model and external formats:
//
//   - [Graph], [Node], [Edge]: Serialization types (this package)
//   - pkg/chart.Snapshot: In-memory representation
//
// Use [FromSnapshot]/[ToSnapshot] to convert between them.
//
// # Format
//
//	{
//	  "nodes": [
//	    {"id": "dept-1", "type": "department", "position": {"x": 100, "y": 100},
//	     "data": {"name": "Sales", "description": "", "width": 800, "height": 600},
//	     "style": {"width": 800, "height": 600, "background": "#e6f7ff"}},
//	    {"id": "person-1", "type": "person", "position": {"x": 100, "y": 150},
//	     "parentId": "dept-1",
//	     "data": {"name": "Ada", "position": "Lead", "email": "ada@example.com", "isContacted": true}}
//	  ],
//	  "edges": [{"id": "e1", "source": "dept-1", "target": "person-1"}]
//	}
//
// Common operations:
//
//	s, _ := graph.ReadFile("chart.json")    // File → Snapshot
//	graph.WriteFile(s, "output.json")       // Snapshot → File
//	data, _ := graph.Marshal(s)             // Snapshot → []byte
//	s, _ = graph.Unmarshal(data)            // []byte → Snapshot
//
// # Validation
//
// Decoding is all or nothing with respect to nodes: a node without an id,
// with an unknown type, or with a repeated id fails the whole document.
// Edges are more forgiving. An edge whose endpoint is missing is dropped
// and the rest of the document still loads.
//
// Payload fields are coerced on read exactly as they are on edit; a text
// node without a fontSize gets the default size, and a non-numeric one
// becomes 0.
//
// # Unknown Fields
//
// Keys this package does not recognize, at node, edge or data level, are
// preserved and written back unchanged. The legacy "parentNode" key is
// read as "parentId". A person's style.opacity is dropped on read, since
// opacity is derived from the contact flag.
//
// # Concurrency
//
// All functions are safe for concurrent use.
package graph
