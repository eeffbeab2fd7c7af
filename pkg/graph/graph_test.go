package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/orgchart/pkg/chart"
)

func sampleSnapshot() chart.Snapshot {
	return chart.Snapshot{
		Nodes: []chart.Node{
			{
				ID:       "dept-1",
				Position: chart.Position{X: 100, Y: 100},
				Data:     chart.DepartmentData{Name: "Sales", Description: "HQ", Color: "#e6f7ff", Width: 800, Height: 600},
				Style:    chart.Style{"width": 800.0, "height": 600.0, "background": "#e6f7ff"},
			},
			{
				ID:       "person-1",
				Position: chart.Position{X: 20, Y: 50},
				ParentID: "dept-1",
				Data:     chart.PersonData{Name: "Ada", Position: "Lead", Email: "ada@example.com", IsContacted: true},
			},
			{
				ID:       "text-1",
				Position: chart.Position{X: 100, Y: 100},
				Data:     chart.TextData{Text: "hello", FontSize: 20},
				Hidden:   true,
			},
			{
				ID:       "image-1",
				Position: chart.Position{X: 100, Y: 200},
				Data:     chart.ImageData{Alt: "logo"},
			},
		},
		Edges: []chart.Edge{
			{ID: "e1", Source: "dept-1", Target: "person-1", SourceHandle: "bottom"},
			{ID: "e2", Source: "text-1", Target: "text-1"},
		},
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	s := sampleSnapshot()

	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(s) {
		t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, s)
	}
}

func TestMarshal(t *testing.T) {
	tests := []struct {
		name  string
		snap  chart.Snapshot
		check func(t *testing.T, g map[string]any)
	}{
		{
			name: "Empty",
			snap: chart.Snapshot{},
			check: func(t *testing.T, g map[string]any) {
				if nodes, ok := g["nodes"].([]any); !ok || len(nodes) != 0 {
					t.Errorf("nodes = %v, want empty array", g["nodes"])
				}
				if edges, ok := g["edges"].([]any); !ok || len(edges) != 0 {
					t.Errorf("edges = %v, want empty array", g["edges"])
				}
			},
		},
		{
			name: "ImageWithoutSrcIsNull",
			snap: chart.Snapshot{Nodes: []chart.Node{{ID: "i", Data: chart.ImageData{Alt: "x"}}}},
			check: func(t *testing.T, g map[string]any) {
				data := firstNode(t, g)["data"].(map[string]any)
				src, ok := data["src"]
				if !ok || src != nil {
					t.Errorf("src = %v (present %v), want null", src, ok)
				}
			},
		},
		{
			name: "OmitsZeroOptionals",
			snap: chart.Snapshot{Nodes: []chart.Node{{ID: "d", Data: chart.DepartmentData{Name: "x"}}}},
			check: func(t *testing.T, g map[string]any) {
				n := firstNode(t, g)
				for _, k := range []string{"parentId", "style", "hidden", "selected", "width", "height"} {
					if _, ok := n[k]; ok {
						t.Errorf("unexpected key %q", k)
					}
				}
				data := n["data"].(map[string]any)
				for _, k := range []string{"color", "width", "height"} {
					if _, ok := data[k]; ok {
						t.Errorf("unexpected data key %q", k)
					}
				}
			},
		},
		{
			name: "WritesExtra",
			snap: chart.Snapshot{Nodes: []chart.Node{{
				ID:    "t",
				Data:  chart.TextData{FontSize: 14, Extra: map[string]any{"align": "left"}},
				Extra: map[string]any{"draggable": false, "id": "shadowed"},
			}}},
			check: func(t *testing.T, g map[string]any) {
				n := firstNode(t, g)
				if n["draggable"] != false {
					t.Errorf("draggable = %v, want false", n["draggable"])
				}
				if n["id"] != "t" {
					t.Errorf("id = %v, want known field to win over extra", n["id"])
				}
				if n["data"].(map[string]any)["align"] != "left" {
					t.Error("payload extra not written")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.snap)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var g map[string]any
			if err := json.Unmarshal(data, &g); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			tt.check(t, g)
		})
	}
}

func firstNode(t *testing.T, g map[string]any) map[string]any {
	t.Helper()
	nodes, ok := g["nodes"].([]any)
	if !ok || len(nodes) == 0 {
		t.Fatalf("no nodes in %v", g)
	}
	return nodes[0].(map[string]any)
}

func TestRead(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   error
		check     func(t *testing.T, s chart.Snapshot)
	}{
		{
			name:      "Empty",
			input:     `{"nodes": [], "edges": []}`,
			wantNodes: 0,
			wantEdges: 0,
		},
		{
			name:      "MissingArrays",
			input:     `{}`,
			wantNodes: 0,
			wantEdges: 0,
		},
		{
			name: "DanglingEdgeDropped",
			input: `{
				"nodes": [{"id": "a", "type": "text", "position": {"x": 0, "y": 0}, "data": {}}],
				"edges": [
					{"id": "e1", "source": "a", "target": "a"},
					{"id": "e2", "source": "a", "target": "ghost"}
				]
			}`,
			wantNodes: 1,
			wantEdges: 1,
		},
		{
			name: "DuplicateEdgeIDDropped",
			input: `{
				"nodes": [{"id": "a", "type": "text", "data": {}}],
				"edges": [
					{"id": "e1", "source": "a", "target": "a"},
					{"id": "e1", "source": "a", "target": "a", "sourceHandle": "x"}
				]
			}`,
			wantNodes: 1,
			wantEdges: 1,
			check: func(t *testing.T, s chart.Snapshot) {
				if s.Edges[0].SourceHandle != "" {
					t.Error("later duplicate edge replaced the first")
				}
			},
		},
		{
			name:      "DefaultFontSize",
			input:     `{"nodes": [{"id": "t", "type": "text", "data": {"text": "hi"}}]}`,
			wantNodes: 1,
			check: func(t *testing.T, s chart.Snapshot) {
				if d := s.Nodes[0].Data.(chart.TextData); d.FontSize != chart.DefaultFontSize {
					t.Errorf("fontSize = %d, want %d", d.FontSize, chart.DefaultFontSize)
				}
			},
		},
		{
			name:      "NonNumericFontSize",
			input:     `{"nodes": [{"id": "t", "type": "text", "data": {"fontSize": "big"}}]}`,
			wantNodes: 1,
			check: func(t *testing.T, s chart.Snapshot) {
				if d := s.Nodes[0].Data.(chart.TextData); d.FontSize != 0 {
					t.Errorf("fontSize = %d, want 0", d.FontSize)
				}
			},
		},
		{
			name:      "LegacyParentNode",
			input:     `{"nodes": [{"id": "d", "type": "department", "data": {}}, {"id": "p", "type": "person", "parentNode": "d", "data": {}}]}`,
			wantNodes: 2,
			check: func(t *testing.T, s chart.Snapshot) {
				if s.Nodes[1].ParentID != "d" {
					t.Errorf("parentId = %q, want d", s.Nodes[1].ParentID)
				}
				if _, ok := s.Nodes[1].Extra["parentNode"]; ok {
					t.Error("legacy key kept in extra")
				}
			},
		},
		{
			name:      "PersonOpacityStripped",
			input:     `{"nodes": [{"id": "p", "type": "person", "style": {"opacity": 0.5, "border": "1px"}, "data": {"isContacted": false}}]}`,
			wantNodes: 1,
			check: func(t *testing.T, s chart.Snapshot) {
				st := s.Nodes[0].Style
				if _, ok := st["opacity"]; ok {
					t.Error("opacity not stripped")
				}
				if st["border"] != "1px" {
					t.Error("other style keys lost")
				}
			},
		},
		{
			name:      "UnknownFieldsPreserved",
			input:     `{"nodes": [{"id": "p", "type": "person", "zIndex": 3, "data": {"phone": "123"}}], "edges": [], "viewport": {"zoom": 1}}`,
			wantNodes: 1,
			check: func(t *testing.T, s chart.Snapshot) {
				n := s.Nodes[0]
				if n.Extra["zIndex"] != 3.0 {
					t.Errorf("zIndex = %v", n.Extra["zIndex"])
				}
				if v, _ := n.Data.Field("phone"); v != "123" {
					t.Errorf("phone = %v", v)
				}
			},
		},
		{
			name:    "UnknownType",
			input:   `{"nodes": [{"id": "w", "type": "widget", "data": {}}]}`,
			wantErr: ErrUnknownType,
		},
		{
			name:    "DuplicateNodeID",
			input:   `{"nodes": [{"id": "a", "type": "text", "data": {}}, {"id": "a", "type": "image", "data": {}}]}`,
			wantErr: ErrDuplicateID,
		},
		{
			name:    "MissingNodeID",
			input:   `{"nodes": [{"type": "text", "data": {}}]}`,
			wantErr: ErrMissingID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Read(strings.NewReader(tt.input))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Read: %v", err)
			}

			if got := len(s.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(s.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

func TestReadInvalidJSON(t *testing.T) {
	if _, err := Read(strings.NewReader(`{invalid json}`)); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestReadTrailingData(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Garbage", `{"nodes": [], "edges": []} this is not json`, true},
		{"SecondDocument", `{"nodes": []} {"nodes": []}`, true},
		{"TrailingWhitespace", "{\"nodes\": [], \"edges\": []}\n\t ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrTrailingData) {
					t.Fatalf("Unmarshal() error = %v, want ErrTrailingData", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
		})
	}
}

func TestUnknownFieldsSurviveRoundTrip(t *testing.T) {
	input := `{"nodes": [{"id": "a", "type": "text", "extent": "parent", "data": {"text": "x", "fontSize": 14, "align": "left"}}],
		"edges": [{"id": "e", "source": "a", "target": "a", "animated": true}]}`

	s, err := Unmarshal([]byte(input))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	for _, want := range []string{`"extent": "parent"`, `"align": "left"`, `"animated": true`} {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.json")
	s := sampleSnapshot()

	if err := WriteFile(s, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !got.Equal(s) {
		t.Error("file round trip mismatch")
	}
}

func TestReadFileNotFound(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nonexistent.json")); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestWriteFileBadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(chart.Snapshot{}, filepath.Join(blocker, "x.json")); err == nil {
		t.Error("expected error writing below a regular file")
	}
}

func TestUnmarshalGraph(t *testing.T) {
	g, err := UnmarshalGraph([]byte(`{"nodes": [{"id": "w", "type": "widget"}]}`))
	if err != nil {
		t.Fatalf("UnmarshalGraph: %v", err)
	}
	if len(g.Nodes) != 1 || g.Nodes[0].Type != "widget" {
		t.Errorf("got %+v", g)
	}
}
