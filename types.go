package postfix

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-postfix/pkg/activity"
)

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}

// RuleContext carries the inputs of one expression evaluation.
type RuleContext struct {
	// Snapshot is the merged document exposed as top-level variables.
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Postfix is the postfix the document was resolved for ("" for default).
	Postfix string
	// Chain is the probe sequence used to resolve the document.
	Chain []string
}

// reservedNames are bound by every evaluator and shadow document keys of
// the same name.
var reservedNames = []string{"now", "args", "metadata", "postfix"}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

// label names the postfix the context resolved for: the explicit postfix,
// else the head of the chain, else "default".
func (ctx RuleContext) label() string {
	if ctx.Postfix != "" {
		return ctx.Postfix
	}
	if len(ctx.Chain) > 0 && ctx.Chain[0] != "" {
		return ctx.Chain[0]
	}
	return "default"
}

func (ctx RuleContext) chainLabel() string {
	return strings.Join(ctx.Chain, ",")
}

// variables returns the document keys overlaid with the reserved bindings.
// postfix is {name, chain}. ctx must have its defaults applied.
func (ctx RuleContext) variables() map[string]any {
	vars := make(map[string]any, len(ctx.Snapshot)+len(reservedNames))
	maps.Copy(vars, ctx.Snapshot)
	chain := make([]any, len(ctx.Chain))
	for i, postfix := range ctx.Chain {
		chain[i] = postfix
	}
	vars["now"] = *ctx.Now
	vars["args"] = ctx.Args
	vars["metadata"] = ctx.Metadata
	vars["postfix"] = map[string]any{"name": ctx.Postfix, "chain": chain}
	return vars
}

// documentKeys lists the snapshot keys that are not reserved, sorted.
func (ctx RuleContext) documentKeys() []string {
	keys := make([]string, 0, len(ctx.Snapshot))
	for key := range ctx.Snapshot {
		if !slices.Contains(reservedNames, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	name            string
	cacheEnabled    bool
	cache           LookupCache
	invalidateChain bool
	logger          Logger
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	evaluatorLogger EvaluatorLogger
	activityHooks   activity.Hooks
	activityChannel string
	defaultPostfix  string
	priorities      []string
}

func applyOptions(opts []Option) engineConfig {
	cfg := engineConfig{
		name:            DefaultEngineName,
		cacheEnabled:    true,
		invalidateChain: true,
		logger:          NopLogger{},
		evaluatorLogger: noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = NopLogger{}
	}
	if cfg.evaluatorLogger == nil {
		cfg.evaluatorLogger = noopEvaluatorLogger{}
	}
	if cfg.cacheEnabled && cfg.cache == nil {
		cfg.cache = NewMapCache()
	}
	return cfg
}
