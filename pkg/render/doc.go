// Package render draws a chart snapshot with Graphviz.
//
// The canvas is free-form: every node keeps the position the user gave
// it, so [ToDOT] pins each node at its absolute canvas position (child
// positions are relative to their department) and [RenderSVG] lays the
// graph out with neato, which leaves pinned nodes in place. No automatic
// arrangement takes place.
//
//	dot := render.ToDOT(snapshot, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Canvas pixels map to Graphviz points, and the y axis is flipped so the
// SVG reads top-down like the editor canvas. Uncontacted persons are drawn
// translucent, matching their on-canvas opacity.
package render
