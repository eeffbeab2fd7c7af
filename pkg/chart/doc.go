// Package chart defines the in-memory data model of an organization chart.
//
// A chart is a [Snapshot]: an ordered list of [Node] values and an ordered
// list of [Edge] values. Nodes are placed on a 2D canvas and carry a
// type-specific payload:
//
//   - [TextData]: free text with a font size
//   - [ImageData]: an image stored as a data URI
//   - [PersonData]: a person card (name, job title, email, contact status)
//   - [DepartmentData]: a department container that other nodes nest in
//
// # Payload Variants
//
// [Payload] is a closed set: only the four payload types of this package
// implement it. A node's type is derived from its payload, so a node can
// never carry a payload that disagrees with its type tag:
//
//	n := chart.Node{ID: "person-1", Data: chart.PersonData{Name: "Ada"}}
//	n.Type() // chart.TypePerson
//
// Payloads are values. Field edits go through [Payload.WithField], which
// returns a modified copy and leaves the receiver untouched:
//
//	p := chart.PersonData{Name: "Ada"}
//	q := p.WithField("email", "ada@example.com")
//	// p.Email == "", q.(chart.PersonData).Email == "ada@example.com"
//
// Values handed to WithField are coerced to the field's type at this
// boundary: a non-numeric font size becomes 0, a non-boolean contact flag
// becomes false. No other validation is performed.
//
// # Containment
//
// [Node.ParentID] names the department a node is nested in. Child positions
// are relative to their parent's position. The model tolerates a ParentID
// that points at a missing or non-department node; it is simply unresolved.
//
// # Unknown Fields
//
// Nodes, edges and every payload carry an Extra map holding fields this
// package does not know about. They are preserved when a node is forwarded
// or when a different field is edited. Extra maps are shared between copies
// and must be treated as read-only; WithField copies before writing.
//
// # Concurrency
//
// Snapshots are immutable by convention and safe for concurrent reads.
package chart
