package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/registry"
)

// Node id prefixes of seeded nodes.
const (
	DepartmentPrefix = "dept-"
	PersonPrefix     = "person-"
)

// ErrInvalid is returned when a seed file is malformed.
var ErrInvalid = errors.New("invalid seed")

// Point is a canvas coordinate in a seed file.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Department is one department record.
type Department struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Position    Point   `yaml:"position"`
	Width       float64 `yaml:"width,omitempty"`
	Height      float64 `yaml:"height,omitempty"`
	Color       string  `yaml:"color,omitempty"`
	ParentID    string  `yaml:"parentId,omitempty"`
}

// Person is one person record. Position is the job title; the canvas
// coordinate is PositionXY.
type Person struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Position     string `yaml:"position"`
	Email        string `yaml:"email"`
	DepartmentID string `yaml:"departmentId,omitempty"`
	PositionXY   Point  `yaml:"positionXY"`
	IsContacted  bool   `yaml:"isContacted"`
}

// Data is a complete seed: departments first, then persons.
type Data struct {
	Departments []Department `yaml:"departments"`
	Persons     []Person     `yaml:"persons"`
}

// Builtin returns the built-in seed hierarchy.
func Builtin() Data {
	return Data{
		Departments: []Department{
			{ID: "1", Name: "営業本部", Description: "営業活動全体を統括する部門", Position: Point{100, 100}, Width: 800, Height: 600, Color: "#e6f7ff"},
			{ID: "2", Name: "営業1課", Description: "国内営業を担当", Position: Point{150, 200}, ParentID: "1", Width: 350, Height: 400, Color: "#f0f5ff"},
			{ID: "3", Name: "営業2課", Description: "海外営業を担当", Position: Point{550, 200}, ParentID: "1", Width: 350, Height: 400, Color: "#f9f0ff"},
		},
		Persons: []Person{
			{ID: "1", Name: "山田太郎", Position: "部長", Email: "yamada@example.com", DepartmentID: "1", PositionXY: Point{100, 150}, IsContacted: true},
			{ID: "2", Name: "佐藤次郎", Position: "課長", Email: "sato@example.com", DepartmentID: "2", PositionXY: Point{170, 250}, IsContacted: true},
			{ID: "3", Name: "鈴木花子", Position: "主任", Email: "suzuki@example.com", DepartmentID: "2", PositionXY: Point{170, 350}},
			{ID: "4", Name: "高橋一郎", Position: "課長", Email: "takahashi@example.com", DepartmentID: "3", PositionXY: Point{570, 250}, IsContacted: true},
			{ID: "5", Name: "田中雅子", Position: "主任", Email: "tanaka@example.com", DepartmentID: "3", PositionXY: Point{570, 350}},
		},
	}
}

// Default returns the built-in seed as a snapshot.
func Default() chart.Snapshot { return Builtin().Snapshot() }

// Snapshot maps the records to nodes. Departments become dept-<id>
// containers with a 300x200 default extent and #f2f2f2 default background;
// persons become person-<id> cards inside dept-<departmentId>.
func (d Data) Snapshot() chart.Snapshot {
	nodes := make([]chart.Node, 0, len(d.Departments)+len(d.Persons))
	for _, dept := range d.Departments {
		width := orDefault(dept.Width, registry.DefaultDeptWidth)
		height := orDefault(dept.Height, registry.DefaultDeptHeight)
		background := dept.Color
		if background == "" {
			background = registry.DefaultDeptBackground
		}
		nodes = append(nodes, chart.Node{
			ID:       DepartmentPrefix + dept.ID,
			Position: chart.Position{X: dept.Position.X, Y: dept.Position.Y},
			ParentID: parent(dept.ParentID),
			Data: chart.DepartmentData{
				Name:        dept.Name,
				Description: dept.Description,
				Color:       dept.Color,
				Width:       width,
				Height:      height,
			},
			Style: registry.DepartmentStyle(width, height, background),
		})
	}
	for _, p := range d.Persons {
		nodes = append(nodes, chart.Node{
			ID:       PersonPrefix + p.ID,
			Position: chart.Position{X: p.PositionXY.X, Y: p.PositionXY.Y},
			ParentID: parent(p.DepartmentID),
			Data: chart.PersonData{
				Name:        p.Name,
				Position:    p.Position,
				Email:       p.Email,
				IsContacted: p.IsContacted,
			},
		})
	}
	return chart.Snapshot{Nodes: nodes}
}

// Validate checks that ids are present and unique and that every
// reference names a department of the seed.
func (d Data) Validate() error {
	depts := make(map[string]bool, len(d.Departments))
	for i, dept := range d.Departments {
		if dept.ID == "" {
			return fmt.Errorf("%w: department %d has no id", ErrInvalid, i)
		}
		if depts[dept.ID] {
			return fmt.Errorf("%w: duplicate department id %q", ErrInvalid, dept.ID)
		}
		depts[dept.ID] = true
	}
	for _, dept := range d.Departments {
		if dept.ParentID != "" && !depts[dept.ParentID] {
			return fmt.Errorf("%w: department %q: unknown parent %q", ErrInvalid, dept.ID, dept.ParentID)
		}
	}

	persons := make(map[string]bool, len(d.Persons))
	for i, p := range d.Persons {
		if p.ID == "" {
			return fmt.Errorf("%w: person %d has no id", ErrInvalid, i)
		}
		if persons[p.ID] {
			return fmt.Errorf("%w: duplicate person id %q", ErrInvalid, p.ID)
		}
		persons[p.ID] = true
		if p.DepartmentID != "" && !depts[p.DepartmentID] {
			return fmt.Errorf("%w: person %q: unknown department %q", ErrInvalid, p.ID, p.DepartmentID)
		}
	}
	return nil
}

// =============================================================================
// YAML
// =============================================================================

// Read decodes and validates a YAML seed. Unknown keys are rejected.
func Read(r io.Reader) (Data, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d Data
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return Data{}, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return Data{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := d.Validate(); err != nil {
		return Data{}, err
	}
	return d, nil
}

// LoadFile reads a YAML seed from path.
func LoadFile(path string) (Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	d, err := Read(bytes.NewReader(data))
	if err != nil {
		return Data{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Write encodes d as YAML.
func Write(w io.Writer, d Data) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

func parent(id string) string {
	if id == "" {
		return ""
	}
	return DepartmentPrefix + id
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
