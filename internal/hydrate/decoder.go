package hydrate

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/goliatone/go-postfix/value"
)

// Mode selects how scalar fragments are interpreted.
type Mode uint8

const (
	// ModeTyped trusts the scalar kinds carried by structured formats.
	ModeTyped Mode = iota
	// ModeText treats every scalar as text and parses it into the target.
	ModeText
)

// Context identifies the fragment being converted.
type Context struct {
	Postfix string
	Path    string
	Mode    Mode
}

// PreHook lets callers mutate or normalise the fragment before decoding.
type PreHook func(Context, value.Value) (value.Value, error)

// PostHook lets callers adjust or validate the decoded target.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default conversion when provided.
type CustomDecoder[T any] func(Context, value.Value) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts resolved fragments into T.
type Decoder[T any] struct {
	preHooks  []PreHook
	postHooks []PostHook[T]
	configure []func(*mapstructure.DecoderConfig)
	custom    CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithErrorUnused fails structured decoding when the fragment carries keys
// the target does not declare.
func WithErrorUnused[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.configure = append(d.configure, func(cfg *mapstructure.DecoderConfig) {
			cfg.ErrorUnused = true
		})
	}
}

// WithDecoderConfig allows callers to adjust the structural decoder directly.
func WithDecoderConfig[T any](configure func(*mapstructure.DecoderConfig)) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if configure != nil {
			d.configure = append(d.configure, configure)
		}
	}
}

// WithCustomDecoder replaces the default conversion path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts fragment into T applying configured hooks.
func (d *Decoder[T]) Decode(ctx Context, fragment value.Value) (T, error) {
	var zero T

	current := fragment
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for path %q failed: %w", ctx.Path, err)
		}
		current = next
	}

	var result T
	if d.custom != nil {
		decoded, err := d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: custom decoder for path %q failed: %w", ctx.Path, err)
		}
		result = decoded
	} else if err := d.convert(ctx, current, reflect.ValueOf(&result).Elem()); err != nil {
		return zero, err
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("hydrate: post-hook for path %q failed: %w", ctx.Path, err)
		}
	}

	return result, nil
}

func (d *Decoder[T]) convert(ctx Context, fragment value.Value, target reflect.Value) error {
	if target.Type() == valueType {
		target.Set(reflect.ValueOf(fragment))
		return nil
	}

	shape := value.ShapeOf(target.Type())
	if ctx.Mode == ModeText {
		if shape.Structured() {
			return mismatch(ctx.Path, target.Type(), fragment.Kind(), ErrStructuredText)
		}
		if target.Kind() == reflect.Interface {
			return setInterface(target, fragment.ToAny())
		}
		if !fragment.IsScalar() {
			return mismatch(ctx.Path, target.Type(), fragment.Kind(), nil)
		}
		return decodeText(ctx.Path, fragment.Text(), target)
	}

	if fragment.IsNull() {
		return nil
	}
	if shape == value.ShapeScalar {
		return decodeScalar(ctx.Path, fragment.ToAny(), target)
	}
	return d.decodeStructured(ctx, fragment, target)
}

// decodeStructured maps object keys onto fields by exact name, using the
// json tag when present. Unknown keys are ignored unless WithErrorUnused is
// set; missing keys keep the zero value.
func (d *Decoder[T]) decodeStructured(ctx Context, fragment value.Value, target reflect.Value) error {
	var firstMismatch error
	cfg := &mapstructure.DecoderConfig{
		Result:    target.Addr().Interface(),
		TagName:   "json",
		MatchName: func(mapKey, fieldName string) bool { return mapKey == fieldName },
		DecodeHook: mapstructure.DecodeHookFuncType(func(_ reflect.Type, to reflect.Type, data any) (any, error) {
			out, err := scalarHook(ctx.Path, to, data)
			if err != nil && firstMismatch == nil {
				firstMismatch = err
			}
			return out, err
		}),
	}
	for _, configure := range d.configure {
		configure(cfg)
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return fmt.Errorf("hydrate: decoder config: %w", err)
	}
	if err := decoder.Decode(fragment.ToAny()); err != nil {
		if firstMismatch != nil {
			return firstMismatch
		}
		return mismatch(ctx.Path, target.Type(), fragment.Kind(), err)
	}
	return nil
}

// scalarHook converts plain Go scalars into scalar fields so numeric widths,
// characters and value.Value fields follow the same rules as top-level reads.
func scalarHook(path string, to reflect.Type, data any) (any, error) {
	if data == nil {
		return data, nil
	}
	if to == valueType {
		return value.FromAny(data)
	}
	if value.ShapeOf(to) != value.ShapeScalar {
		return data, nil
	}
	switch data.(type) {
	case string, int64, float64, bool:
	default:
		return data, nil
	}
	out := reflect.New(to).Elem()
	if err := decodeScalar(path, data, out); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// Errors reported through TypeMismatchError.Cause.
var (
	ErrStructuredText = errors.New("hydrate: plain text sources cannot populate structured targets")
	ErrCharLength     = errors.New("hydrate: character target requires exactly one rune")
	ErrOverflow       = errors.New("hydrate: value overflows target")
	ErrNotIntegral    = errors.New("hydrate: value is not integral")
)

// TypeMismatchError reports a fragment that cannot be coerced into the
// requested target.
type TypeMismatchError struct {
	Path   string
	Target reflect.Type
	Kind   value.Kind
	Cause  error
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	target := "<nil>"
	if e.Target != nil {
		target = e.Target.String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("hydrate: cannot convert %s at %q to %s: %v", e.Kind, e.Path, target, e.Cause)
	}
	return fmt.Sprintf("hydrate: cannot convert %s at %q to %s", e.Kind, e.Path, target)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *TypeMismatchError) Unwrap() error {
	return e.Cause
}

func mismatch(path string, target reflect.Type, kind value.Kind, cause error) error {
	return &TypeMismatchError{Path: path, Target: target, Kind: kind, Cause: cause}
}

var valueType = reflect.TypeOf(value.Value{})
