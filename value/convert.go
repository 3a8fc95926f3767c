package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// FromAny converts a generic decoded tree (as produced by encoding/json or a
// YAML decoder) into a Value. Map keys are sorted because Go maps carry no
// order.
func FromAny(in any) (Value, error) {
	switch typed := in.(type) {
	case nil:
		return Null, nil
	case Value:
		return typed, nil
	case string:
		return String(typed), nil
	case bool:
		return Bool(typed), nil
	case int:
		return Int(int64(typed)), nil
	case int8:
		return Int(int64(typed)), nil
	case int16:
		return Int(int64(typed)), nil
	case int32:
		return Int(int64(typed)), nil
	case int64:
		return Int(typed), nil
	case uint:
		return fromUint(uint64(typed)), nil
	case uint8:
		return Int(int64(typed)), nil
	case uint16:
		return Int(int64(typed)), nil
	case uint32:
		return Int(int64(typed)), nil
	case uint64:
		return fromUint(typed), nil
	case float32:
		return Float(float64(typed)), nil
	case float64:
		return Float(typed), nil
	case json.Number:
		return FromNumber(typed.String())
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		b := NewObjectBuilder(len(keys))
		for _, key := range keys {
			child, err := FromAny(typed[key])
			if err != nil {
				return Null, fmt.Errorf("%s: %w", key, err)
			}
			b.Set(key, child)
		}
		return b.Build(), nil
	case []any:
		items := make([]Value, len(typed))
		for i, item := range typed {
			child, err := FromAny(item)
			if err != nil {
				return Null, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = child
		}
		return Value{kind: KindArray, array: items}, nil
	default:
		return Null, fmt.Errorf("value: unsupported type %s", reflect.TypeOf(in))
	}
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}

// FromNumber parses a number literal, keeping integers integral.
func FromNumber(literal string) (Value, error) {
	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return Null, fmt.Errorf("value: invalid number %q: %w", literal, err)
	}
	return Float(f), nil
}

// ToAny converts v into plain Go values: map[string]any, []any, string,
// int64, float64, bool or nil.
func (v Value) ToAny() any {
	switch v.kind {
	case KindObject:
		out := make(map[string]any, v.object.Len())
		v.object.Range(func(key string, child Value) bool {
			out[key] = child.ToAny()
			return true
		})
		return out
	case KindArray:
		out := make([]any, len(v.array))
		for i, item := range v.array {
			out[i] = item.ToAny()
		}
		return out
	case KindNull:
		return nil
	default:
		return v.scalar
	}
}

// MarshalJSON encodes v keeping object key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindObject:
		buf.WriteByte('{')
		first := true
		var err error
		v.object.Range(func(key string, child Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			var keyJSON []byte
			if keyJSON, err = json.Marshal(key); err != nil {
				return false
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			err = child.writeJSON(buf)
			return err == nil
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.array {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		raw, err := json.Marshal(v.ToAny())
		if err != nil {
			return err
		}
		buf.Write(raw)
		return nil
	}
}
