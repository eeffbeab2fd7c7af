package chart

import (
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Payload is the type-specific record of a node.
//
// The interface is sealed: only [TextData], [ImageData], [PersonData] and
// [DepartmentData] implement it.
type Payload interface {
	// Kind returns the node type this payload belongs to.
	Kind() NodeType

	// Field returns the value of a named field. Unknown names are looked up
	// in the payload's Extra map.
	Field(name string) (any, bool)

	// WithField returns a copy with one field replaced. The value is coerced
	// to the field's type; unknown names are stored in Extra.
	WithField(name string, value any) Payload

	// Extras returns the unknown fields carried by the payload. The map is
	// shared and must not be modified.
	Extras() map[string]any

	equal(Payload) bool
}

// Field names shared by the payload variants.
const (
	FieldText        = "text"
	FieldFontSize    = "fontSize"
	FieldSrc         = "src"
	FieldAlt         = "alt"
	FieldName        = "name"
	FieldPosition    = "position" // job title on person cards
	FieldEmail       = "email"
	FieldIsContacted = "isContacted"
	FieldDescription = "description"
	FieldColor       = "color"
	FieldWidth       = "width"
	FieldHeight      = "height"
)

var fieldsByType = map[NodeType][]string{
	TypeText:       {FieldText, FieldFontSize},
	TypeImage:      {FieldSrc, FieldAlt},
	TypePerson:     {FieldName, FieldPosition, FieldEmail, FieldIsContacted},
	TypeDepartment: {FieldName, FieldDescription, FieldColor, FieldWidth, FieldHeight},
}

// Fields returns the known payload field names of t in display order.
func (t NodeType) Fields() []string { return slices.Clone(fieldsByType[t]) }

// Empty returns the zero payload of t, or nil for an unknown type.
// Text payloads start at DefaultFontSize.
func (t NodeType) Empty() Payload {
	switch t {
	case TypeText:
		return TextData{FontSize: DefaultFontSize}
	case TypeImage:
		return ImageData{}
	case TypePerson:
		return PersonData{}
	case TypeDepartment:
		return DepartmentData{}
	}
	return nil
}

// Font size bounds for text nodes.
const (
	DefaultFontSize = 14
	MinFontSize     = 8
	MaxFontSize     = 72
)

// Opacity values for person cards.
const (
	OpacityContacted   = 1.0
	OpacityUncontacted = 0.5
)

// =============================================================================
// Text
// =============================================================================

// TextData is the payload of a free text box.
type TextData struct {
	Text     string
	FontSize int
	Extra    map[string]any
}

func (d TextData) Extras() map[string]any { return d.Extra }

func (TextData) Kind() NodeType { return TypeText }

func (d TextData) Field(name string) (any, bool) {
	switch name {
	case FieldText:
		return d.Text, true
	case FieldFontSize:
		return d.FontSize, true
	}
	return extraField(d.Extra, name)
}

func (d TextData) WithField(name string, value any) Payload {
	switch name {
	case FieldText:
		d.Text = cast.ToString(value)
	case FieldFontSize:
		d.FontSize = toInt(value)
	default:
		d.Extra = withExtra(d.Extra, name, value)
	}
	return d
}

// ClampFontSize limits size to [MinFontSize, MaxFontSize].
func ClampFontSize(size int) int {
	return min(max(size, MinFontSize), MaxFontSize)
}

func (d TextData) equal(p Payload) bool {
	o, ok := p.(TextData)
	return ok && d.Text == o.Text && d.FontSize == o.FontSize && anyMapEqual(d.Extra, o.Extra)
}

// =============================================================================
// Image
// =============================================================================

// ImageData is the payload of an image box. Src is a data URI, or empty
// when no image has been uploaded yet.
type ImageData struct {
	Src   string
	Alt   string
	Extra map[string]any
}

func (d ImageData) Extras() map[string]any { return d.Extra }

func (ImageData) Kind() NodeType { return TypeImage }

// HasImage reports whether an image has been uploaded.
func (d ImageData) HasImage() bool { return d.Src != "" }

func (d ImageData) Field(name string) (any, bool) {
	switch name {
	case FieldSrc:
		return d.Src, true
	case FieldAlt:
		return d.Alt, true
	}
	return extraField(d.Extra, name)
}

func (d ImageData) WithField(name string, value any) Payload {
	switch name {
	case FieldSrc:
		d.Src = cast.ToString(value)
	case FieldAlt:
		d.Alt = cast.ToString(value)
	default:
		d.Extra = withExtra(d.Extra, name, value)
	}
	return d
}

func (d ImageData) equal(p Payload) bool {
	o, ok := p.(ImageData)
	return ok && d.Src == o.Src && d.Alt == o.Alt && anyMapEqual(d.Extra, o.Extra)
}

// =============================================================================
// Person
// =============================================================================

// PersonData is the payload of a person card.
type PersonData struct {
	Name        string
	Position    string // job title
	Email       string
	IsContacted bool
	Extra       map[string]any
}

func (d PersonData) Extras() map[string]any { return d.Extra }

func (PersonData) Kind() NodeType { return TypePerson }

// Opacity is the card's visual opacity, derived from IsContacted.
func (d PersonData) Opacity() float64 {
	if d.IsContacted {
		return OpacityContacted
	}
	return OpacityUncontacted
}

// Initial returns the first letter of the name, used as an avatar.
func (d PersonData) Initial() string {
	for _, r := range d.Name {
		return strings.ToUpper(string(r))
	}
	return ""
}

func (d PersonData) Field(name string) (any, bool) {
	switch name {
	case FieldName:
		return d.Name, true
	case FieldPosition:
		return d.Position, true
	case FieldEmail:
		return d.Email, true
	case FieldIsContacted:
		return d.IsContacted, true
	}
	return extraField(d.Extra, name)
}

func (d PersonData) WithField(name string, value any) Payload {
	switch name {
	case FieldName:
		d.Name = cast.ToString(value)
	case FieldPosition:
		d.Position = cast.ToString(value)
	case FieldEmail:
		d.Email = cast.ToString(value)
	case FieldIsContacted:
		d.IsContacted = cast.ToBool(value)
	default:
		d.Extra = withExtra(d.Extra, name, value)
	}
	return d
}

func (d PersonData) equal(p Payload) bool {
	o, ok := p.(PersonData)
	return ok && d.Name == o.Name && d.Position == o.Position && d.Email == o.Email &&
		d.IsContacted == o.IsContacted && anyMapEqual(d.Extra, o.Extra)
}

// =============================================================================
// Department
// =============================================================================

// DepartmentData is the payload of a department container.
// Width and Height are the container extent; zero means unset.
type DepartmentData struct {
	Name        string
	Description string
	Color       string
	Width       float64
	Height      float64
	Extra       map[string]any
}

func (d DepartmentData) Extras() map[string]any { return d.Extra }

func (DepartmentData) Kind() NodeType { return TypeDepartment }

func (d DepartmentData) Field(name string) (any, bool) {
	switch name {
	case FieldName:
		return d.Name, true
	case FieldDescription:
		return d.Description, true
	case FieldColor:
		return d.Color, true
	case FieldWidth:
		return d.Width, true
	case FieldHeight:
		return d.Height, true
	}
	return extraField(d.Extra, name)
}

func (d DepartmentData) WithField(name string, value any) Payload {
	switch name {
	case FieldName:
		d.Name = cast.ToString(value)
	case FieldDescription:
		d.Description = cast.ToString(value)
	case FieldColor:
		d.Color = cast.ToString(value)
	case FieldWidth:
		d.Width = cast.ToFloat64(value)
	case FieldHeight:
		d.Height = cast.ToFloat64(value)
	default:
		d.Extra = withExtra(d.Extra, name, value)
	}
	return d
}

func (d DepartmentData) equal(p Payload) bool {
	o, ok := p.(DepartmentData)
	return ok && d.Name == o.Name && d.Description == o.Description && d.Color == o.Color &&
		d.Width == o.Width && d.Height == o.Height && anyMapEqual(d.Extra, o.Extra)
}

// =============================================================================
// Helpers
// =============================================================================

// ParseInt converts v to an int. Strings are trimmed and read as base 10,
// so "012" is 12 and "0x10" is an error. Other values go through cast.
func ParseInt(v any) (int, error) {
	s, ok := v.(string)
	if !ok {
		return cast.ToIntE(v)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 0)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// toInt is ParseInt with 0 for anything that does not parse.
func toInt(v any) int {
	n, err := ParseInt(v)
	if err != nil {
		return 0
	}
	return n
}

func extraField(extra map[string]any, name string) (any, bool) {
	v, ok := extra[name]
	return v, ok
}

// withExtra returns a copy of extra with name set, leaving extra untouched.
func withExtra(extra map[string]any, name string, value any) map[string]any {
	out := make(map[string]any, len(extra)+1)
	maps.Copy(out, extra)
	out[name] = value
	return out
}

func payloadEqual(a, b Payload) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.equal(b)
}

// valueEqual compares decoded values. Numbers compare by value regardless of
// their Go type, since JSON decoding turns every number into a float64.
func valueEqual(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		return cast.ToFloat64(a) == cast.ToFloat64(b)
	}
	return reflect.DeepEqual(a, b)
}

func isNumber(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
