package hydrate

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/goliatone/go-postfix/value"
)

var charType = reflect.TypeOf(value.Char(0))

// decodeText parses text into target using Go's standard parsing rules and
// the target's bit width.
func decodeText(path, text string, target reflect.Value) error {
	if target.Kind() == reflect.Pointer {
		elem := reflect.New(target.Type().Elem())
		if err := decodeText(path, text, elem.Elem()); err != nil {
			return err
		}
		target.Set(elem)
		return nil
	}
	if target.Type() == charType {
		return setChar(path, text, target)
	}

	fail := func(cause error) error {
		return mismatch(path, target.Type(), value.KindString, cause)
	}

	switch target.Kind() {
	case reflect.String:
		target.SetString(text)
	case reflect.Bool:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return fail(err)
		}
		target.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(text, 10, target.Type().Bits())
		if err != nil {
			return fail(parseCause(err))
		}
		target.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(text, 10, target.Type().Bits())
		if err != nil {
			return fail(parseCause(err))
		}
		target.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(text, target.Type().Bits())
		if err != nil {
			return fail(parseCause(err))
		}
		target.SetFloat(f)
	case reflect.Interface:
		return setInterface(target, text)
	default:
		return fail(nil)
	}
	return nil
}

// decodeScalar converts a natively typed scalar (string, int64, float64 or
// bool) into target. Text is parsed when a typed target is requested.
func decodeScalar(path string, data any, target reflect.Value) error {
	if target.Kind() == reflect.Pointer {
		elem := reflect.New(target.Type().Elem())
		if err := decodeScalar(path, data, elem.Elem()); err != nil {
			return err
		}
		target.Set(elem)
		return nil
	}
	if text, ok := data.(string); ok {
		return decodeText(path, text, target)
	}
	if target.Type() == charType {
		return mismatch(path, target.Type(), kindOf(data), ErrCharLength)
	}

	fail := func(cause error) error {
		return mismatch(path, target.Type(), kindOf(data), cause)
	}

	switch target.Kind() {
	case reflect.String:
		v, err := value.FromAny(data)
		if err != nil {
			return fail(err)
		}
		target.SetString(v.Text())
	case reflect.Bool:
		b, ok := data.(bool)
		if !ok {
			return fail(nil)
		}
		target.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := integral(data)
		if err != nil {
			return fail(err)
		}
		if target.OverflowInt(i) {
			return fail(ErrOverflow)
		}
		target.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := integral(data)
		if err != nil {
			return fail(err)
		}
		if i < 0 || target.OverflowUint(uint64(i)) {
			return fail(ErrOverflow)
		}
		target.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		var f float64
		switch n := data.(type) {
		case int64:
			f = float64(n)
		case float64:
			f = n
		default:
			return fail(nil)
		}
		if target.OverflowFloat(f) {
			return fail(ErrOverflow)
		}
		target.SetFloat(f)
	case reflect.Interface:
		return setInterface(target, data)
	default:
		return fail(nil)
	}
	return nil
}

func integral(data any) (int64, error) {
	switch n := data.(type) {
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, ErrNotIntegral
		}
		if n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, ErrOverflow
		}
		return int64(n), nil
	default:
		return 0, errors.New("hydrate: not a number")
	}
}

func setChar(path, text string, target reflect.Value) error {
	if utf8.RuneCountInString(text) != 1 {
		return mismatch(path, target.Type(), value.KindString, ErrCharLength)
	}
	r, _ := utf8.DecodeRuneInString(text)
	target.SetInt(int64(r))
	return nil
}

func setInterface(target reflect.Value, data any) error {
	if data == nil {
		return nil
	}
	v := reflect.ValueOf(data)
	if !v.Type().AssignableTo(target.Type()) {
		return mismatch("", target.Type(), kindOf(data), nil)
	}
	target.Set(v)
	return nil
}

func parseCause(err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return ErrOverflow
	}
	return err
}

func kindOf(data any) value.Kind {
	v, err := value.FromAny(data)
	if err != nil {
		return value.KindNull
	}
	return v.Kind()
}
