package seed

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/orgchart/pkg/chart"
)

func TestDefault(t *testing.T) {
	s := Default()
	counts := s.CountByType()
	if counts[chart.TypeDepartment] != 3 || counts[chart.TypePerson] != 5 {
		t.Fatalf("counts = %v, want 3 departments and 5 persons", counts)
	}
	if len(s.Edges) != 0 {
		t.Errorf("edges = %d, want 0", len(s.Edges))
	}

	parents := map[string]string{
		"dept-1":   "",
		"dept-2":   "dept-1",
		"dept-3":   "dept-1",
		"person-1": "dept-1",
		"person-2": "dept-2",
		"person-3": "dept-2",
		"person-4": "dept-3",
		"person-5": "dept-3",
	}
	for id, want := range parents {
		n, ok := s.Node(id)
		if !ok {
			t.Errorf("missing node %s", id)
			continue
		}
		if n.ParentID != want {
			t.Errorf("%s parentId = %q, want %q", id, n.ParentID, want)
		}
		if want != "" {
			if p, ok := s.Node(want); !ok || !p.IsDepartment() {
				t.Errorf("%s parent %s is not a department", id, want)
			}
		}
	}
}

func TestDefaultPayloads(t *testing.T) {
	s := Default()

	root, _ := s.Node("dept-1")
	d, _ := root.Department()
	if d.Name != "営業本部" || d.Width != 800 || d.Height != 600 {
		t.Errorf("dept-1 = %+v", d)
	}
	if root.Style["background"] != "#e6f7ff" || root.Style["borderRadius"] != "5px" {
		t.Errorf("dept-1 style = %v", root.Style)
	}

	hanako, _ := s.Node("person-3")
	p, _ := hanako.Person()
	if p.Name != "鈴木花子" || p.Position != "主任" || p.IsContacted {
		t.Errorf("person-3 = %+v", p)
	}
	if hanako.Position != (chart.Position{X: 170, Y: 350}) {
		t.Errorf("person-3 position = %v", hanako.Position)
	}
	if p.Opacity() != chart.OpacityUncontacted {
		t.Errorf("opacity = %v", p.Opacity())
	}
}

func TestSnapshotDefaults(t *testing.T) {
	s := Data{
		Departments: []Department{{ID: "x", Name: "総務部"}},
		Persons:     []Person{{ID: "y", Name: "無所属"}},
	}.Snapshot()

	dept, _ := s.Node("dept-x")
	if dept.Style["width"] != 300.0 || dept.Style["height"] != 200.0 || dept.Style["background"] != "#f2f2f2" {
		t.Errorf("style = %v", dept.Style)
	}
	person, _ := s.Node("person-y")
	if person.ParentID != "" {
		t.Errorf("person without department got parent %q", person.ParentID)
	}
}

func TestDefaultIsFresh(t *testing.T) {
	a := Default()
	a.Nodes[0].Style["width"] = 1.0
	if b := Default(); b.Nodes[0].Style["width"] != 800.0 {
		t.Error("Default() shares state between calls")
	}
}

func TestRoundTripYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Builtin()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	d, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !d.Snapshot().Equal(Default()) {
		t.Error("YAML round trip changed the seed")
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"Valid", "departments:\n  - id: a\n    name: A\npersons:\n  - id: b\n    departmentId: a\n", ""},
		{"Empty", "", "empty document"},
		{"UnknownKey", "departments:\n  - id: a\n    budget: 100\n", "budget"},
		{"MissingID", "departments:\n  - name: A\n", "no id"},
		{"DuplicateDept", "departments:\n  - id: a\n  - id: a\n", "duplicate department"},
		{"DuplicatePerson", "persons:\n  - id: a\n  - id: a\n", "duplicate person"},
		{"UnknownParent", "departments:\n  - id: a\n    parentId: z\n", "unknown parent"},
		{"UnknownDepartment", "persons:\n  - id: a\n    departmentId: z\n", "unknown department"},
		{"Malformed", "departments: [", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			switch {
			case tt.name == "Valid":
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			case !errors.Is(err, ErrInvalid):
				t.Fatalf("err = %v, want ErrInvalid", err)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `departments:
  - id: hq
    name: 本社
    position: {x: 10, y: 20}
persons:
  - id: ceo
    name: 社長
    position: 代表取締役
    departmentId: hq
    positionXY: {x: 30, y: 40}
    isContacted: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	s := d.Snapshot()
	ceo, ok := s.Node("person-ceo")
	if !ok || ceo.ParentID != "dept-hq" || ceo.Position != (chart.Position{X: 30, Y: 40}) {
		t.Errorf("person-ceo = %+v", ceo)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}
