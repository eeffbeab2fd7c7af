package registry

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cast"

	"github.com/matzehuels/orgchart/pkg/chart"
	pkgerrors "github.com/matzehuels/orgchart/pkg/errors"
)

// Default positions of newly added nodes.
var (
	TextPosition       = chart.Position{X: 100, Y: 100}
	ImagePosition      = chart.Position{X: 100, Y: 200}
	DepartmentPosition = chart.Position{X: 100, Y: 300}
	PersonPosition     = chart.Position{X: 150, Y: 150}
)

// Placeholder content of newly added nodes.
const (
	PlaceholderText        = "テキストを入力してください"
	PlaceholderImageAlt    = "画像"
	PlaceholderDeptName    = "新しい部門"
	PlaceholderDeptDesc    = "部門の説明"
	PlaceholderPersonName  = "新しい担当者"
	PlaceholderPersonTitle = "役職"
	PlaceholderEmail       = "email@example.com"
)

// Department container defaults.
const (
	DefaultDeptWidth      = 300.0
	DefaultDeptHeight     = 200.0
	DefaultDeptBackground = "#f2f2f2"
)

// MaxImageBytes bounds uploaded images.
const MaxImageBytes = 5 << 20

// Default returns a registry with the four built-in node types and the
// default edge type.
func Default() *Registry {
	r := New()
	r.Register(textCapability())
	r.Register(imageCapability())
	r.Register(personCapability())
	r.Register(departmentCapability())
	r.RegisterEdge(EdgeCapability{
		Type: DefaultEdgeType,
		Render: func(e chart.Edge) string {
			return e.Source + " -> " + e.Target
		},
	})
	return r
}

// =============================================================================
// Text
// =============================================================================

func textCapability() Capability {
	return Capability{
		Type:  chart.TypeText,
		Label: "Text",
		Fields: []Field{
			{Name: chart.FieldText, Label: "Text", Kind: KindText},
			{Name: chart.FieldFontSize, Label: "Font size", Kind: KindNumber},
		},
		Template: func(id string) chart.Node {
			return chart.Node{
				ID:       id,
				Position: TextPosition,
				Data:     chart.TextData{Text: PlaceholderText, FontSize: chart.DefaultFontSize},
			}
		},
		Commit: func(field string, input any) (any, error) {
			if field != chart.FieldFontSize {
				return commitString(input)
			}
			n, err := parseInt(input)
			if err != nil {
				return nil, err
			}
			return chart.ClampFontSize(n), nil
		},
		Render: func(n chart.Node) string {
			d, _ := n.Data.(chart.TextData)
			if d.Text == "" {
				return "(empty)"
			}
			return d.Text
		},
	}
}

// =============================================================================
// Image
// =============================================================================

func imageCapability() Capability {
	return Capability{
		Type:  chart.TypeImage,
		Label: "Image",
		Fields: []Field{
			{Name: chart.FieldSrc, Label: "Image", Kind: KindImage},
			{Name: chart.FieldAlt, Label: "Alt text", Kind: KindText},
		},
		Template: func(id string) chart.Node {
			return chart.Node{
				ID:       id,
				Position: ImagePosition,
				Data:     chart.ImageData{Alt: PlaceholderImageAlt},
			}
		},
		Commit: func(field string, input any) (any, error) {
			if field != chart.FieldSrc {
				return commitString(input)
			}
			switch v := input.(type) {
			case []byte:
				return DataURI(v)
			case string:
				if v == "" {
					return "", nil // clears the image
				}
				if _, err := pkgerrors.ValidateDataURI(v); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
				}
				return v, nil
			case nil:
				return "", nil
			}
			return nil, fmt.Errorf("%w: image src from %T", ErrInvalidValue, input)
		},
		Render: func(n chart.Node) string {
			d, _ := n.Data.(chart.ImageData)
			if !d.HasImage() {
				return d.Alt + " [no image]"
			}
			mediaType, err := pkgerrors.ValidateDataURI(d.Src)
			if err != nil {
				return d.Alt + " [image]"
			}
			return fmt.Sprintf("%s [%s]", d.Alt, mediaType)
		},
	}
}

// DataURI encodes image bytes as a base64 data URI. The media type is
// detected from content; non-image data is rejected.
func DataURI(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrInvalidValue)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("%w: image larger than %d bytes", ErrInvalidValue, MaxImageBytes)
	}
	mediaType, _, err := mime.ParseMediaType(mimetype.Detect(data).String())
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: not an image (%s)", ErrInvalidValue, mimetype.Detect(data).String())
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// =============================================================================
// Person
// =============================================================================

func personCapability() Capability {
	return Capability{
		Type:  chart.TypePerson,
		Label: "Person",
		Fields: []Field{
			{Name: chart.FieldName, Label: "Name", Kind: KindText},
			{Name: chart.FieldPosition, Label: "Title", Kind: KindText},
			{Name: chart.FieldEmail, Label: "Email", Kind: KindText},
			{Name: chart.FieldIsContacted, Label: "Contacted", Kind: KindBool},
		},
		Template: func(id string) chart.Node {
			return chart.Node{
				ID:       id,
				Position: PersonPosition,
				Data: chart.PersonData{
					Name:     PlaceholderPersonName,
					Position: PlaceholderPersonTitle,
					Email:    PlaceholderEmail,
				},
			}
		},
		Commit: func(field string, input any) (any, error) {
			if field != chart.FieldIsContacted {
				return commitString(input)
			}
			b, err := cast.ToBoolE(input)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			return b, nil
		},
		Render: func(n chart.Node) string {
			d, _ := n.Person()
			parts := []string{d.Name}
			if d.Position != "" {
				parts = append(parts, d.Position)
			}
			if d.Email != "" {
				parts = append(parts, d.Email)
			}
			s := strings.Join(parts, " / ")
			if !d.IsContacted {
				s += " [not contacted]"
			}
			return s
		},
	}
}

// =============================================================================
// Department
// =============================================================================

func departmentCapability() Capability {
	return Capability{
		Type:  chart.TypeDepartment,
		Label: "Department",
		Fields: []Field{
			{Name: chart.FieldName, Label: "Name", Kind: KindText},
			{Name: chart.FieldDescription, Label: "Description", Kind: KindText},
			{Name: chart.FieldColor, Label: "Color", Kind: KindColor},
		},
		Template: func(id string) chart.Node {
			return chart.Node{
				ID:       id,
				Position: DepartmentPosition,
				Data: chart.DepartmentData{
					Name:        PlaceholderDeptName,
					Description: PlaceholderDeptDesc,
					Width:       DefaultDeptWidth,
					Height:      DefaultDeptHeight,
				},
				Style: DepartmentStyle(DefaultDeptWidth, DefaultDeptHeight, DefaultDeptBackground),
			}
		},
		Commit: func(field string, input any) (any, error) {
			switch field {
			case chart.FieldWidth, chart.FieldHeight:
				f, err := parseFloat(input)
				if err != nil {
					return nil, err
				}
				if f < 0 {
					return nil, fmt.Errorf("%w: negative %s", ErrInvalidValue, field)
				}
				return f, nil
			case chart.FieldColor:
				s, err := commitString(input)
				if err != nil {
					return nil, err
				}
				return strings.TrimSpace(s.(string)), nil
			}
			return commitString(input)
		},
		Render: func(n chart.Node) string {
			d, _ := n.Department()
			if d.Description == "" {
				return d.Name
			}
			return d.Name + ": " + d.Description
		},
	}
}

// DepartmentStyle returns the container style of a department.
func DepartmentStyle(width, height float64, background string) chart.Style {
	return chart.Style{
		"width":        width,
		"height":       height,
		"background":   background,
		"borderRadius": "5px",
		"padding":      "10px",
	}
}

// =============================================================================
// Helpers
// =============================================================================

func commitString(input any) (any, error) {
	s, err := cast.ToStringE(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return s, nil
}

func parseInt(input any) (int, error) {
	n, err := chart.ParseInt(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return n, nil
}

func parseFloat(input any) (float64, error) {
	if s, ok := input.(string); ok {
		input = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return f, nil
}
