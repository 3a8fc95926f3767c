package postfix

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Function represents a callable registered against evaluators.
type Function func(args ...any) (any, error)

var (
	// ErrUnknownFunction reports a call to a name nothing was registered under.
	ErrUnknownFunction = errors.New("postfix: function not registered")
	// ErrDuplicateFunction reports a second registration of the same name.
	ErrDuplicateFunction = errors.New("postfix: function already registered")
)

// FunctionRegistry stores custom functions exposed to expressions. Lookups
// fold case; Names reports the spelling used at registration, which is the
// identifier expressions call.
type FunctionRegistry struct {
	mu      sync.RWMutex
	byFold  map[string]Function
	spelled map[string]string
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{byFold: map[string]Function{}, spelled: map[string]string{}}
}

func (r *FunctionRegistry) Register(name string, fn Function) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrConfiguration)
	case fn == nil:
		return fmt.Errorf("%w: function %q is nil", ErrConfiguration, name)
	}
	folded := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byFold == nil {
		r.byFold, r.spelled = map[string]Function{}, map[string]string{}
	}
	if prior, taken := r.spelled[folded]; taken {
		return fmt.Errorf("%w: %q already registered as %q", ErrDuplicateFunction, name, prior)
	}
	r.byFold[folded] = fn
	r.spelled[folded] = name
	return nil
}

// Clone copies the registry; functions themselves are shared.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &FunctionRegistry{byFold: maps.Clone(r.byFold), spelled: maps.Clone(r.spelled)}
}

// Call runs the function registered under name with args.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	var fn Function
	if r != nil {
		r.mu.RLock()
		fn = r.byFold[strings.ToLower(name)]
		r.mu.RUnlock()
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn(args...)
}

// Names lists the registered spellings in sorted order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Values(r.spelled))
}

// WithFunctionRegistry exposes the functions in registry to expressions.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *engineConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for expression evaluation.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *engineConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// NewDocumentFunctions returns a registry with helpers for working with
// resolved documents:
//
//	coalesce(a, b, ...)   first argument that is neither nil nor ""
//	joinPath(a, b, ...)   dotted path from non-empty segments
//	label(postfix)        "default" for the default postfix, else postfix
func NewDocumentFunctions() *FunctionRegistry {
	r := NewFunctionRegistry()
	_ = r.Register("coalesce", func(args ...any) (any, error) {
		for _, arg := range args {
			if arg == nil {
				continue
			}
			if s, ok := arg.(string); ok && s == "" {
				continue
			}
			return arg, nil
		}
		return nil, nil
	})
	_ = r.Register("joinPath", func(args ...any) (any, error) {
		segments := make([]string, 0, len(args))
		for _, arg := range args {
			s, ok := arg.(string)
			if !ok {
				return nil, fmt.Errorf("joinPath expects strings, got %T", arg)
			}
			if s != "" {
				segments = append(segments, s)
			}
		}
		return strings.Join(segments, "."), nil
	})
	_ = r.Register("label", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("label expects 1 argument, got %d", len(args))
		}
		postfix, _ := args[0].(string)
		if postfix == "" {
			return "default", nil
		}
		return postfix, nil
	})
	return r
}
