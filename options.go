package postfix

// DefaultEngineName identifies engines in logs and activity events when
// WithName is not used.
const DefaultEngineName = "postfix"

// WithName labels the engine in log entries and activity events.
func WithName(name string) Option {
	return func(cfg *engineConfig) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithCache toggles lookup memoization. Enabled by default.
func WithCache(enabled bool) Option {
	return func(cfg *engineConfig) {
		cfg.cacheEnabled = enabled
		if !enabled {
			cfg.cache = nil
		}
	}
}

// WithLookupCache installs a custom LookupCache and enables caching.
func WithLookupCache(cache LookupCache) Option {
	return func(cfg *engineConfig) {
		cfg.cache = cache
		cfg.cacheEnabled = cache != nil
	}
}

// WithCacheInvalidationOnPriorityChange controls whether changing the
// default postfix or the priorities clears the lookup cache. Enabled by
// default. When disabled, entries computed under earlier chains are kept;
// they are keyed by chain and never served for a different one.
func WithCacheInvalidationOnPriorityChange(enabled bool) Option {
	return func(cfg *engineConfig) {
		cfg.invalidateChain = enabled
	}
}

// WithLogger attaches a structured logger. nil restores NopLogger.
func WithLogger(logger Logger) Option {
	return func(cfg *engineConfig) {
		cfg.logger = logger
	}
}

// WithEvaluator configures the expression evaluator used by Evaluate.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *engineConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache registers a compiled program cache for the default
// evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *engineConfig) {
		cfg.programCache = cache
	}
}

// WithDefaultPostfix sets the initial default postfix.
func WithDefaultPostfix(postfix string) Option {
	return func(cfg *engineConfig) {
		cfg.defaultPostfix = postfix
	}
}

// WithPriorities sets the initial postfix priorities, strongest first.
func WithPriorities(priorities ...string) Option {
	return func(cfg *engineConfig) {
		cfg.priorities = append([]string(nil), priorities...)
	}
}
