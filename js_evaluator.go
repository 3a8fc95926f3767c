//go:build js_eval

package postfix

import (
	"github.com/dop251/goja"
)

// jsEvaluator runs expressions with goja. Each evaluation gets a fresh
// runtime; compiled programs are shared.
type jsEvaluator struct {
	evaluatorConfig
}

// NewJSEvaluator returns an Evaluator backed by goja. The expression is the
// body of a return statement, so document keys and registered functions
// are plain identifiers.
func NewJSEvaluator(opts ...EvaluatorOption) Evaluator {
	return &jsEvaluator{evaluatorConfig: newEvaluatorConfig(opts)}
}

func (e *jsEvaluator) engineName() string { return EngineJS }

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, evaluationError(EngineJS, expression, ctx.label(), err)
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationError(EngineJS, expression, "", ErrEmptyExpression)
	}
	program, err := compiledProgram(e.cache, programKey(EngineJS, expression), func() (*goja.Program, error) {
		return goja.Compile("", "(function(){ return ("+expression+"); })()", false)
	})
	if err != nil {
		return nil, evaluationError(EngineJS, expression, "", err)
	}
	return &jsRule{evaluator: e, program: program, expression: expression}, nil
}

type jsRule struct {
	evaluator  *jsEvaluator
	program    *goja.Program
	expression string
}

func (r *jsRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	vm := goja.New()
	for name, binding := range ctx.variables() {
		if err := vm.Set(name, binding); err != nil {
			return nil, evaluationError(EngineJS, r.expression, ctx.label(), err)
		}
	}
	for name, fn := range r.evaluator.functionBindings() {
		if err := vm.Set(name, fn); err != nil {
			return nil, evaluationError(EngineJS, r.expression, ctx.label(), err)
		}
	}
	result, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, evaluationError(EngineJS, r.expression, ctx.label(), err)
	}
	return result.Export(), nil
}
