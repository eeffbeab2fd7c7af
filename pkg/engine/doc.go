// Package engine implements the graph state engine of the chart editor.
//
// The engine owns the authoritative node and edge lists of one editing
// session and is the only place they change. Every edit arrives as a batch
// of typed changes:
//
//	e := engine.New()
//	e.ApplyNodeChanges([]engine.NodeChange{
//	    engine.AddNode{Node: n},
//	    engine.MoveNode{ID: n.ID, Position: chart.Position{X: 10, Y: 20}},
//	})
//	snap := e.Snapshot()
//
// # Pure Functions
//
// [ApplyNodeChanges] and [ApplyEdgeChanges] are pure left folds over a
// batch. They never modify their input, skip changes that reference
// unknown ids, and ignore adds whose id is already taken (first writer
// wins). They are usable on their own by hosts that keep state elsewhere.
//
// # Referential Integrity
//
// The [Engine] methods add the cross-list rules the pure functions leave
// out: removing a node removes its incident edges in the same critical
// section, added edges must reference live nodes, and [Engine.Replace]
// normalizes a loaded snapshot by dropping dangling edges and repeated
// ids.
//
// ParentID is not checked. A node may name a missing or non-department
// parent, and department nesting cycles are not detected; deleting a
// department leaves its children in place with an unresolved ParentID.
//
// # Failure Semantics
//
// All operations are total. Malformed input, such as a NaN position, a
// negative size or an unknown id, is a no-op.
package engine
