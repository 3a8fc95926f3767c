package postfix

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/goliatone/go-postfix/internal/hydrate"
	"github.com/goliatone/go-postfix/value"
)

// DecodeContext identifies the fragment handed to read hooks.
type DecodeContext = hydrate.Context

// ReadOption customises how a resolved fragment is converted into T.
type ReadOption[T any] = hydrate.DecoderOption[T]

// ReadPreHook rewrites the fragment before it is converted.
func ReadPreHook[T any](hook func(DecodeContext, value.Value) (value.Value, error)) ReadOption[T] {
	return hydrate.WithPreHook[T](hook)
}

// ReadPostHook adjusts or validates the converted value.
func ReadPostHook[T any](hook func(DecodeContext, *T) error) ReadOption[T] {
	return hydrate.WithPostHook[T](hook)
}

// ReadCustomDecoder replaces the default conversion for T.
func ReadCustomDecoder[T any](decoder func(DecodeContext, value.Value) (T, error)) ReadOption[T] {
	return hydrate.WithCustomDecoder[T](decoder)
}

// ReadErrorUnused rejects objects carrying keys T does not declare.
func ReadErrorUnused[T any]() ReadOption[T] {
	return hydrate.WithErrorUnused[T]()
}

// ReadDecoderConfig adjusts the structural decoder used for objects and
// arrays.
func ReadDecoderConfig[T any](configure func(*mapstructure.DecoderConfig)) ReadOption[T] {
	return hydrate.WithDecoderConfig[T](configure)
}

// Read resolves path along the engine's chain and converts the result into
// T. A path missing from every source returns the zero value and false.
func Read[T any](e *Engine, path string, opts ...ReadOption[T]) (T, bool, error) {
	return read(e, "", false, path, opts)
}

// ReadFor resolves path for postfix. A postfix missing from the chain is
// probed before it; one already in the chain changes nothing.
func ReadFor[T any](e *Engine, postfix, path string, opts ...ReadOption[T]) (T, bool, error) {
	return read(e, postfix, true, path, opts)
}

// ReadList resolves path along the chain and converts the elements into T.
// A resolved value that is not an array reports absent.
func ReadList[T any](e *Engine, path string, opts ...ReadOption[[]T]) ([]T, bool, error) {
	return readList(e, "", false, path, opts)
}

// ReadListFor is ReadList for an explicit postfix.
func ReadListFor[T any](e *Engine, postfix, path string, opts ...ReadOption[[]T]) ([]T, bool, error) {
	return readList(e, postfix, true, path, opts)
}

// MustRead is Read for startup code that treats errors and misses as fatal.
func MustRead[T any](e *Engine, path string) T {
	out, found, err := Read[T](e, path)
	if err != nil {
		panic(err)
	}
	if !found {
		panic("postfix: path " + path + " not found")
	}
	return out
}

func read[T any](e *Engine, postfix string, explicit bool, path string, opts []ReadOption[T]) (T, bool, error) {
	var zero T
	shape := value.ShapeOf(reflect.TypeFor[T]())
	fragment, found, err := e.resolve(postfix, explicit, path, shape)
	if err != nil || !found {
		return zero, false, err
	}
	out, err := hydrate.NewDecoder[T](opts...).Decode(e.decodeContext(postfix, path), fragment)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func readList[T any](e *Engine, postfix string, explicit bool, path string, opts []ReadOption[[]T]) ([]T, bool, error) {
	fragment, found, err := e.resolve(postfix, explicit, path, value.ShapeArray)
	if err != nil || !found || !fragment.IsArray() {
		return nil, false, err
	}
	out, err := hydrate.NewDecoder[[]T](opts...).Decode(e.decodeContext(postfix, path), fragment)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (e *Engine) decodeContext(postfix, path string) DecodeContext {
	return DecodeContext{Postfix: postfix, Path: path, Mode: e.mode()}
}
