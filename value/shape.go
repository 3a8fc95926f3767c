package value

import "reflect"

// Char is a single character target. Conversions into Char require text of
// exactly one rune.
type Char rune

// Shape is the structural category of a conversion target.
type Shape uint8

const (
	// ShapeAny accepts whatever the merge produced (Value, any, interfaces).
	ShapeAny Shape = iota
	ShapeScalar
	ShapeObject
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	default:
		return "any"
	}
}

// Structured reports whether s needs object or array data.
func (s Shape) Structured() bool {
	return s == ShapeObject || s == ShapeArray
}

var valueType = reflect.TypeOf(Value{})

// ShapeOf classifies a Go type as a conversion target.
func ShapeOf(t reflect.Type) Shape {
	if t == nil || t == valueType {
		return ShapeAny
	}
	switch t.Kind() {
	case reflect.Pointer:
		return ShapeOf(t.Elem())
	case reflect.Interface:
		return ShapeAny
	case reflect.Struct, reflect.Map:
		return ShapeObject
	case reflect.Slice, reflect.Array:
		return ShapeArray
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return ShapeScalar
	default:
		return ShapeAny
	}
}
