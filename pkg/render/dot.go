package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/orgchart/pkg/chart"
)

// Default extents of nodes that were never measured, in canvas pixels.
var defaultSize = map[chart.NodeType][2]float64{
	chart.TypeText:       {150, 40},
	chart.TypeImage:      {120, 120},
	chart.TypePerson:     {160, 72},
	chart.TypeDepartment: {300, 200},
}

// pointsPerInch converts canvas pixels (treated as points) to the inch
// units of Graphviz width and height.
const pointsPerInch = 72.0

// Options configures canvas rendering.
type Options struct {
	// ShowHidden includes hidden nodes, drawn dashed.
	ShowHidden bool

	// Label overrides the node label. When nil, labels are built from the
	// payload fields.
	Label func(chart.Node) string
}

// ToDOT converts a snapshot to Graphviz DOT with every node pinned at its
// absolute canvas position. Departments are emitted first so they are
// drawn underneath their members. Hidden nodes and their edges are
// skipped unless opts.ShowHidden is set.
func ToDOT(s chart.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph orgchart {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=\"nodesfirst\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"sans-serif\", fontsize=12, fixedsize=true];\n")
	buf.WriteString("  edge [color=\"#555555\", arrowsize=0.7];\n")
	buf.WriteString("\n")

	visible := make(map[string]bool, len(s.Nodes))
	for _, pass := range []bool{true, false} {
		for _, n := range s.Nodes {
			if n.IsDepartment() != pass || n.Data == nil {
				continue
			}
			if n.Hidden && !opts.ShowHidden {
				continue
			}
			visible[n.ID] = true
			fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(s, n, opts), ", "))
		}
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		if !visible[e.Source] || !visible[e.Target] {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", e.Source, e.Target, e.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Size returns the extent of n: the measured size, the department's
// payload extent, or a per-type default.
func Size(n chart.Node) (width, height float64) {
	if d, ok := n.Department(); ok && d.Width > 0 && d.Height > 0 {
		return d.Width, d.Height
	}
	if n.Width > 0 && n.Height > 0 {
		return n.Width, n.Height
	}
	sz := defaultSize[n.Type()]
	return sz[0], sz[1]
}

func nodeAttrs(s chart.Snapshot, n chart.Node, opts Options) []string {
	w, h := Size(n)
	abs := s.AbsolutePosition(n.ID)
	// Graphviz positions name the center with y growing upward.
	cx, cy := abs.X+w/2, -(abs.Y + h/2)

	label := fmtLabel(n)
	if opts.Label != nil {
		label = opts.Label(n)
	}

	attrs := []string{
		fmt.Sprintf("id=%q", n.ID),
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(cy)),
		fmt.Sprintf("width=%s", num(w/pointsPerInch)),
		fmt.Sprintf("height=%s", num(h/pointsPerInch)),
	}
	attrs = append(attrs, typeAttrs(n)...)
	if n.Hidden {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

func fmtLabel(n chart.Node) string {
	switch d := n.Data.(type) {
	case chart.TextData:
		return d.Text
	case chart.ImageData:
		return d.Alt
	case chart.PersonData:
		return joinNonEmpty(d.Name, d.Position, d.Email)
	case chart.DepartmentData:
		return joinNonEmpty(d.Name, d.Description)
	}
	return n.ID
}

func typeAttrs(n chart.Node) []string {
	switch d := n.Data.(type) {
	case chart.TextData:
		return []string{"shape=plaintext", fmt.Sprintf("fontsize=%d", chart.ClampFontSize(d.FontSize))}
	case chart.ImageData:
		if !d.HasImage() {
			return []string{"style=\"rounded,dashed\""}
		}
		return []string{"fillcolor=\"#fafafa\""}
	case chart.PersonData:
		// Uncontacted persons are drawn translucent.
		alpha := fmt.Sprintf("%02x", int(d.Opacity()*255))
		return []string{
			fmt.Sprintf("fillcolor=\"#ffffff%s\"", alpha),
			fmt.Sprintf("color=\"#000000%s\"", alpha),
			fmt.Sprintf("fontcolor=\"#000000%s\"", alpha),
		}
	case chart.DepartmentData:
		return []string{"labelloc=t", fmt.Sprintf("fillcolor=%q", background(n, d))}
	}
	return nil
}

func background(n chart.Node, d chart.DepartmentData) string {
	if bg, ok := n.Style["background"].(string); ok && bg != "" {
		return bg
	}
	if d.Color != "" {
		return d.Color
	}
	return "#f2f2f2"
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

func num(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
