package graph

import (
	"fmt"
	"image"
	"image/color"
	"maps"
	"slices"

	"github.com/johnjohndoe/netmap/pkg/geom"
)

// Kind discriminates the variant stored in a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindColor
	KindEnum
	KindImage
	KindPoint
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindString:  "string",
	KindColor:   "color",
	KindEnum:    "enum",
	KindImage:   "image",
	KindPoint:   "point",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Value is a tagged variant holding one metadata value. The zero Value is
// invalid and is never stored in a Metadata map.
type Value struct {
	kind Kind
	num  float64
	str  string
	col  color.NRGBA
	img  image.Image
	pt   geom.Point
}

// Bool wraps a boolean.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// Int wraps an integer.
func Int(i int) Value { return Value{kind: KindInt, num: float64(i)} }

// Float wraps a floating point number.
func Float(f float64) Value { return Value{kind: KindFloat, num: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Color wraps a color. Any color.Color is converted to non-premultiplied RGBA.
func Color(c color.Color) Value {
	return Value{kind: KindColor, col: color.NRGBAModel.Convert(c).(color.NRGBA)}
}

// Enum wraps the ordinal of an enumeration such as Shape or Visibility.
func Enum[E ~int](e E) Value { return Value{kind: KindEnum, num: float64(e)} }

// Image wraps an image handle.
func Image(img image.Image) Value { return Value{kind: KindImage, img: img} }

// PointValue wraps a point.
func PointValue(p geom.Point) Value { return Value{kind: KindPoint, pt: p} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether the value holds anything.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsBool returns the boolean and whether the value is a bool.
func (v Value) AsBool() (bool, bool) { return v.num != 0, v.kind == KindBool }

// AsInt returns the integer and whether the value is an int or enum.
func (v Value) AsInt() (int, bool) {
	return int(v.num), v.kind == KindInt || v.kind == KindEnum
}

// AsFloat returns the number and whether the value is numeric. Ints widen to
// floats; enums do not.
func (v Value) AsFloat() (float64, bool) {
	return v.num, v.kind == KindFloat || v.kind == KindInt
}

// AsString returns the string and whether the value is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsColor returns the color and whether the value is a color.
func (v Value) AsColor() (color.NRGBA, bool) { return v.col, v.kind == KindColor }

// AsImage returns the image and whether the value is an image.
func (v Value) AsImage() (image.Image, bool) { return v.img, v.kind == KindImage }

// AsPoint returns the point and whether the value is a point.
func (v Value) AsPoint() (geom.Point, bool) { return v.pt, v.kind == KindPoint }

// Equal reports whether two values have the same kind and payload. Images
// compare by identity.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.num == o.num && v.str == o.str &&
		v.col == o.col && v.img == o.img && v.pt == o.pt
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		b, _ := v.AsBool()
		return fmt.Sprint(b)
	case KindInt, KindEnum:
		return fmt.Sprint(int(v.num))
	case KindFloat:
		return fmt.Sprint(v.num)
	case KindString:
		return v.str
	case KindColor:
		return fmt.Sprintf("#%02x%02x%02x%02x", v.col.R, v.col.G, v.col.B, v.col.A)
	case KindImage:
		if v.img == nil {
			return "image(nil)"
		}
		b := v.img.Bounds()
		return fmt.Sprintf("image(%dx%d)", b.Dx(), b.Dy())
	case KindPoint:
		return fmt.Sprintf("(%g,%g)", v.pt.X, v.pt.Y)
	}
	return "<invalid>"
}

// Metadata stores per-element key/value overrides. The zero value is ready
// to use. Metadata is not safe for concurrent use.
type Metadata struct {
	values map[string]Value
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set stores v under key. Setting an invalid Value removes the key.
func (m *Metadata) Set(key string, v Value) {
	if !v.IsValid() {
		m.Remove(key)
		return
	}
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	m.values[key] = v
}

// Remove deletes key. It is a no-op when the key is absent.
func (m *Metadata) Remove(key string) { delete(m.values, key) }

// Has reports whether key is present.
func (m *Metadata) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Len returns the number of keys.
func (m *Metadata) Len() int { return len(m.values) }

// Keys returns all keys in sorted order.
func (m *Metadata) Keys() []string { return slices.Sorted(maps.Keys(m.values)) }

// Clone returns an independent copy.
func (m *Metadata) Clone() *Metadata { return &Metadata{values: maps.Clone(m.values)} }

// Float returns a numeric value.
func (m *Metadata) Float(key string) (float64, bool) {
	v, ok := m.values[key]
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

// Int returns an int or enum value.
func (m *Metadata) Int(key string) (int, bool) {
	v, ok := m.values[key]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

// Bool returns a boolean value.
func (m *Metadata) Bool(key string) (bool, bool) {
	v, ok := m.values[key]
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// String returns a string value.
func (m *Metadata) String(key string) (string, bool) {
	v, ok := m.values[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Color returns a color value.
func (m *Metadata) Color(key string) (color.NRGBA, bool) {
	v, ok := m.values[key]
	if !ok {
		return color.NRGBA{}, false
	}
	return v.AsColor()
}

// Image returns an image value.
func (m *Metadata) Image(key string) (image.Image, bool) {
	v, ok := m.values[key]
	if !ok {
		return nil, false
	}
	return v.AsImage()
}

// EnumValue returns the enum stored under key converted to E.
func EnumValue[E ~int](m *Metadata, key string) (E, bool) {
	v, ok := m.values[key]
	if !ok || v.kind != KindEnum {
		return 0, false
	}
	return E(v.num), true
}
