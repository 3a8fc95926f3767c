package postfix

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Names of the built-in evaluators, reported in EvaluationError and
// EvaluatorLogEvent. Evaluators supplied through WithEvaluator report
// "custom".
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// ErrEmptyExpression is returned for an empty expression.
var ErrEmptyExpression = errors.New("postfix: expression must not be empty")

// Evaluator runs expressions against a RuleContext.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is an expression bound to an evaluator, evaluated once per
// context.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

type namedEvaluator interface {
	engineName() string
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(namedEvaluator); ok {
		return named.engineName()
	}
	return "custom"
}

// EvaluatorOption configures the built-in evaluators.
type EvaluatorOption func(*evaluatorConfig)

type evaluatorConfig struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// EvaluatorProgramCache stores compiled programs in cache. One cache can be
// shared by several evaluators; keys are scoped by evaluator.
func EvaluatorProgramCache(cache ProgramCache) EvaluatorOption {
	return func(cfg *evaluatorConfig) {
		cfg.cache = cache
	}
}

// EvaluatorFunctions exposes a copy of registry to expressions.
func EvaluatorFunctions(registry *FunctionRegistry) EvaluatorOption {
	return func(cfg *evaluatorConfig) {
		cfg.functions = registry.Clone()
	}
}

func newEvaluatorConfig(opts []EvaluatorOption) evaluatorConfig {
	var cfg evaluatorConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// functionBindings binds every registered function under its name, plus
// call(name, args...) for dynamic dispatch.
func (cfg evaluatorConfig) functionBindings() map[string]any {
	if cfg.functions == nil {
		return nil
	}
	registry := cfg.functions
	names := registry.Names()
	bindings := make(map[string]any, len(names)+1)
	bindings["call"] = func(name string, args ...any) (any, error) {
		return registry.Call(name, args...)
	}
	for _, name := range names {
		bindings[name] = func(args ...any) (any, error) {
			return registry.Call(name, args...)
		}
	}
	return bindings
}

// compiledProgram returns the program cached under key, compiling and
// storing it on a miss. A cached value of another type counts as a miss.
func compiledProgram[P any](cache ProgramCache, key string, compile func() (P, error)) (P, error) {
	if cache != nil {
		if cached, ok := cache.Get(key); ok {
			if program, ok := cached.(P); ok {
				return program, nil
			}
		}
	}
	program, err := compile()
	if err != nil {
		return program, err
	}
	if cache != nil {
		cache.Set(key, program)
	}
	return program, nil
}

// programKey scopes expr by evaluator and, for evaluators whose programs
// depend on the declared variables, by the document keys.
func programKey(engine, expr string, keys ...string) string {
	return engine + "\x00" + strings.Join(keys, ",") + "\x00" + expr
}

// EvaluationError reports a failed evaluation with the evaluator, the
// expression and the postfix it ran for.
type EvaluationError struct {
	Engine  string
	Expr    string
	Postfix string
	Err     error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	expr := "<empty>"
	if e.Expr != "" {
		expr = fmt.Sprintf("%q", e.Expr)
	}
	return fmt.Sprintf("postfix: %s evaluator: %s for %s: %v", e.Engine, expr, e.Postfix, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// evaluationError wraps err in an EvaluationError. An EvaluationError
// already in the chain only has its blank fields filled.
func evaluationError(engine, expr, postfix string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Postfix == "" {
			evalErr.Postfix = postfix
		}
		return err
	}
	return &EvaluationError{Engine: engine, Expr: expr, Postfix: postfix, Err: err}
}

// EvaluatorLogEvent describes one Evaluate call.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Postfix  string
	Chain    string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvaluatorLogger struct{}

func (noopEvaluatorLogger) LogEvaluation(EvaluatorLogEvent) {}

// WithEvaluatorLogger receives an event for every Evaluate call.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *engineConfig) {
		cfg.evaluatorLogger = logger
	}
}
