// Package session turns user gestures into engine mutations.
//
// A [Session] owns one [engine.Engine] together with the storage adapter
// and key it persists to, the type registry used to build and edit nodes,
// and the state a host UI needs between gestures: the selected node and
// open field edits.
//
// # Lifecycle
//
// [Session.Start] loads the chart stored under the session key. When the
// key is absent or its content is corrupt, the built-in seed is used
// instead and kept in memory only. [Session.Save] writes the live
// snapshot; a failure is logged, reported in the [SaveResult] and kept in
// [Session.LastStatus], and never interrupts editing.
//
// # Edits
//
// Field edits are drafted while a node is being edited ([Session.BeginEdit],
// [Session.Draft]) and committed together on blur ([Session.CommitEdits]).
// Each draft passes through the registry's commit function, so a font
// size of "200" is stored as 72 and image bytes become a data URI. Drafts
// the registry rejects leave the previous value in place.
//
// # Concurrency
//
// Sessions are safe for concurrent use, but hosts are expected to deliver
// gestures serially from their event loop.
package session
