//go:build !js_eval

package postfix

import "errors"

// ErrJSUnavailable is returned by the JS evaluator in builds without the
// js_eval tag.
var ErrJSUnavailable = errors.New("postfix: js evaluator requires the js_eval build tag")

type jsEvaluator struct{}

// NewJSEvaluator returns an evaluator that fails every call with
// ErrJSUnavailable. Build with -tags js_eval for the goja implementation.
func NewJSEvaluator(...EvaluatorOption) Evaluator {
	return jsEvaluator{}
}

func (jsEvaluator) engineName() string { return EngineJS }

func (jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	return nil, evaluationError(EngineJS, expression, ctx.label(), ErrJSUnavailable)
}

func (jsEvaluator) Compile(expression string) (CompiledRule, error) {
	return nil, evaluationError(EngineJS, expression, "", ErrJSUnavailable)
}
