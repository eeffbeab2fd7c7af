// Package pkg holds the libraries behind the orgchart editor.
//
// # Overview
//
// An organization chart is a flat list of typed nodes (text, image,
// department, person) placed on a canvas, plus directed edges between
// them. Departments are containers: member nodes name them as ParentID and
// are positioned relative to them. The packages are layered:
//
//  1. [chart] - Data model (nodes, typed payloads, edges, snapshots)
//  2. [engine] - Graph state: change batches, connections, visibility
//  3. [registry] - Node type capabilities (templates, field commits, summaries)
//  4. [graph] - JSON document format of a persisted chart
//  5. [storage] - Stores (file, memory, Redis, MongoDB) and the save/load adapter
//  6. [seed] - Built-in and YAML seed hierarchies
//  7. [session] - Interaction controller tying the above together
//  8. [render] - Graphviz DOT and SVG export
//
// [errors] and [observability] are shared by all of them.
//
// # Data Flow
//
//	storage (or seed) ──▶ session.Start ──▶ engine
//	                                          │
//	      host gestures ──▶ session ──────────┤ change batches
//	                                          ▼
//	                      engine.Snapshot ──▶ storage.Save / render.ToDOT
//
// # Quick Start
//
//	adapter := storage.NewAdapter(storage.NewMemoryStore())
//	sess, _ := session.New(session.Config{Store: adapter})
//	sess.Start(ctx)                 // stored chart, or the built-in seed
//
//	n, _ := sess.AddDepartment()
//	sess.Drag(n.ID, chart.Position{X: 400, Y: 80})
//	sess.ToggleUncontactedVisibility()
//	res := sess.Save(ctx)
//	fmt.Println(res.Message)
//
//	svg, _ := render.RenderSVG(ctx, render.ToDOT(sess.Snapshot(), render.Options{}))
package pkg
