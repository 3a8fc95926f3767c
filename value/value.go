// Package value holds the format-neutral document tree every source adapter
// produces and the merge engine consumes.
package value

import (
	"math"
	"strconv"
)

// Kind classifies a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// IsScalar reports whether k is a string, number or bool.
func (k Kind) IsScalar() bool {
	return k == KindString || k == KindNumber || k == KindBool
}

// Value is an immutable node of a parsed document. The zero Value is null.
type Value struct {
	kind   Kind
	scalar any // string, int64, float64 or bool
	object *Object
	array  []Value
}

// Null is the null value.
var Null = Value{}

// String returns a text scalar.
func String(s string) Value {
	return Value{kind: KindString, scalar: s}
}

// Int returns an integral number scalar.
func Int(i int64) Value {
	return Value{kind: KindNumber, scalar: i}
}

// Float returns a floating point number scalar.
func Float(f float64) Value {
	return Value{kind: KindNumber, scalar: f}
}

// Bool returns a boolean scalar.
func Bool(b bool) Value {
	return Value{kind: KindBool, scalar: b}
}

// Array returns an array holding a copy of items.
func Array(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindArray, array: out}
}

// Kind reports the kind of v.
func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsScalar() bool { return v.kind.IsScalar() }
func (v Value) IsObject() bool { return v.kind == KindObject }
func (v Value) IsArray() bool  { return v.kind == KindArray }

// Str returns the text of a string scalar.
func (v Value) Str() (string, bool) {
	s, ok := v.scalar.(string)
	return s, ok && v.kind == KindString
}

// Int returns the integral value of a number. Floats with a fractional part
// or outside the int64 range are rejected.
func (v Value) Int() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	switch n := v.scalar.(type) {
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// Float returns any number as float64.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	switch n := v.scalar.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// IsIntegral reports whether v is a number stored without a fractional part.
func (v Value) IsIntegral() bool {
	_, ok := v.scalar.(int64)
	return ok && v.kind == KindNumber
}

// Bool returns the value of a bool scalar.
func (v Value) Bool() (bool, bool) {
	b, ok := v.scalar.(bool)
	return b, ok && v.kind == KindBool
}

// Object returns the object view of v, or nil when v is not an object.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		return nil
	}
	return v.object
}

// Items returns a copy of the array elements, or nil when v is not an array.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	out := make([]Value, len(v.array))
	copy(out, v.array)
	return out
}

// Len returns the number of fields or elements for structured values and 0
// otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return v.object.Len()
	case KindArray:
		return len(v.array)
	default:
		return 0
	}
}

// Text renders a scalar the way a plain-text source would have spelled it.
func (v Value) Text() string {
	switch s := v.scalar.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	}
	return ""
}

// Equal reports deep equality. Numbers compare by numeric value and object
// comparison ignores key order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindNumber:
		a, _ := v.Float()
		b, _ := other.Float()
		if v.IsIntegral() && other.IsIntegral() {
			return v.scalar.(int64) == other.scalar.(int64)
		}
		return a == b
	case KindString, KindBool:
		return v.scalar == other.scalar
	case KindArray:
		if len(v.array) != len(other.array) {
			return false
		}
		for i := range v.array {
			if !v.array[i].Equal(other.array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.object.Len() != other.object.Len() {
			return false
		}
		for _, key := range v.object.keys {
			theirs, ok := other.object.Get(key)
			if !ok || !v.object.fields[key].Equal(theirs) {
				return false
			}
		}
		return true
	}
	return false
}
