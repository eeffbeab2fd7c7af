// Package registry describes what the editor can do with each node type.
//
// A [Capability] bundles the template used when a node of the type is
// added, the list of editable fields, a commit function that validates raw
// edits before they reach the engine, and a render function producing a
// one-line summary. [Default] returns the built-in text, image, person and
// department capabilities; hosts may [Registry.Register] their own or wrap
// the summaries with [Registry.SetRender].
package registry
