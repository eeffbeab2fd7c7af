package render

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/seed"
)

func TestToDOT_Seed(t *testing.T) {
	dot := ToDOT(seed.Default(), Options{})

	for _, want := range []string{
		"digraph orgchart",
		"inputscale=72;",
		`"dept-1" [id="dept-1"`,
		`pos="500,-400!"`, // dept-1 at (100,100), 800x600
		"width=11.11, height=8.33",
		`fillcolor="#e6f7ff"`,
		`"person-2" [`,
		`pos="500,-586!"`, // person-2 at (170,250) inside dept-2 inside dept-1
		`fontcolor="#0000007f"`,
		"山田太郎\\n部長\\nyamada@example.com",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q", want)
		}
	}
}

func TestToDOT_DepartmentsFirst(t *testing.T) {
	s := chart.Snapshot{Nodes: []chart.Node{
		{ID: "p", ParentID: "d", Data: chart.PersonData{Name: "p"}},
		{ID: "d", Data: chart.DepartmentData{Name: "d"}},
	}}
	dot := ToDOT(s, Options{})
	if strings.Index(dot, `"d" [`) > strings.Index(dot, `"p" [`) {
		t.Error("departments should be drawn before their members")
	}
}

func TestToDOT_Hidden(t *testing.T) {
	s := chart.Snapshot{
		Nodes: []chart.Node{
			{ID: "a", Data: chart.TextData{Text: "a", FontSize: 14}},
			{ID: "b", Hidden: true, Data: chart.PersonData{Name: "b"}},
		},
		Edges: []chart.Edge{{ID: "ab", Source: "a", Target: "b"}},
	}

	dot := ToDOT(s, Options{})
	if strings.Contains(dot, `"b"`) {
		t.Error("hidden node rendered")
	}
	if strings.Contains(dot, "->") {
		t.Error("edge to hidden node rendered")
	}

	dot = ToDOT(s, Options{ShowHidden: true})
	if !strings.Contains(dot, `"a" -> "b" [id="ab"]`) {
		t.Error("ShowHidden should keep the edge")
	}
	if !strings.Contains(dot, "dashed") {
		t.Error("hidden node should be dashed")
	}
}

func TestToDOT_SelfLoop(t *testing.T) {
	s := chart.Snapshot{
		Nodes: []chart.Node{{ID: "a", Data: chart.TextData{Text: "a"}}},
		Edges: []chart.Edge{{ID: "aa", Source: "a", Target: "a"}},
	}
	if dot := ToDOT(s, Options{}); !strings.Contains(dot, `"a" -> "a"`) {
		t.Error("self-loop not rendered")
	}
}

func TestToDOT_Label(t *testing.T) {
	s := chart.Snapshot{Nodes: []chart.Node{{ID: "a", Data: chart.TextData{Text: "a"}}}}
	dot := ToDOT(s, Options{Label: func(n chart.Node) string { return "<" + n.ID + ">" }})
	if !strings.Contains(dot, `label="<a>"`) {
		t.Errorf("custom label missing: %s", dot)
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		name string
		node chart.Node
		w, h float64
	}{
		{"DepartmentPayload", chart.Node{Width: 10, Height: 10, Data: chart.DepartmentData{Width: 350, Height: 400}}, 350, 400},
		{"Measured", chart.Node{Width: 90, Height: 30, Data: chart.TextData{}}, 90, 30},
		{"DefaultPerson", chart.Node{Data: chart.PersonData{}}, 160, 72},
		{"DefaultDepartment", chart.Node{Data: chart.DepartmentData{}}, 300, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Size(tt.node)
			if w != tt.w || h != tt.h {
				t.Errorf("Size() = %v x %v, want %v x %v", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestTypeAttrs(t *testing.T) {
	tests := []struct {
		name string
		node chart.Node
		want string
	}{
		{"TextFontSize", chart.Node{Data: chart.TextData{FontSize: 200}}, "fontsize=72"},
		{"EmptyImage", chart.Node{Data: chart.ImageData{}}, "dashed"},
		{"Contacted", chart.Node{Data: chart.PersonData{IsContacted: true}}, `fillcolor="#ffffffff"`},
		{"StyleBackground", chart.Node{Style: chart.Style{"background": "#123456"}, Data: chart.DepartmentData{Color: "#abcdef"}}, `fillcolor="#123456"`},
		{"ColorFallback", chart.Node{Data: chart.DepartmentData{Color: "#abcdef"}}, `fillcolor="#abcdef"`},
		{"DefaultBackground", chart.Node{Data: chart.DepartmentData{}}, `fillcolor="#f2f2f2"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Join(typeAttrs(tt.node), " "); !strings.Contains(got, tt.want) {
				t.Errorf("typeAttrs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNum(t *testing.T) {
	for in, want := range map[float64]string{500: "500", -586: "-586", 11.111: "11.11", 0.5: "0.5", 0: "0"} {
		if got := num(in); got != want {
			t.Errorf("num(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeViewBox([]byte(tt.svg)); string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping graphviz render in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(seed.Default(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
	if !strings.Contains(string(svg), "<title>person&#45;3</title>") {
		t.Error("RenderSVG() output missing node id")
	}

	// The seed chart spans roughly 1100x700 canvas pixels.
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		t.Fatal("RenderSVG() output missing viewBox")
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w <= 0 || w > 2000 || h <= 0 || h > 2000 {
		t.Errorf("RenderSVG() viewBox = %.0fx%.0f, want within 2000x2000", w, h)
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
