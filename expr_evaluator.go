package postfix

import (
	"maps"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprEvaluator runs expressions with github.com/expr-lang/expr. It is the
// engine's default evaluator.
type exprEvaluator struct {
	evaluatorConfig
}

// NewExprEvaluator returns an Evaluator backed by expr-lang/expr. Document
// keys are variables, registered functions are callable by name, and
// undefined variables evaluate to nil.
func NewExprEvaluator(opts ...EvaluatorOption) Evaluator {
	return &exprEvaluator{evaluatorConfig: newEvaluatorConfig(opts)}
}

func (e *exprEvaluator) engineName() string { return EngineExpr }

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, evaluationError(EngineExpr, expression, ctx.label(), err)
	}
	return rule.Evaluate(ctx)
}

func (e *exprEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationError(EngineExpr, expression, "", ErrEmptyExpression)
	}
	program, err := compiledProgram(e.cache, programKey(EngineExpr, expression), func() (*exprvm.Program, error) {
		options := []exprlang.Option{
			exprlang.Env(map[string]any{}),
			exprlang.AllowUndefinedVariables(),
		}
		for _, name := range e.functions.Names() {
			options = append(options, exprlang.Function(name, func(args ...any) (any, error) {
				return e.functions.Call(name, args...)
			}))
		}
		return exprlang.Compile(expression, options...)
	})
	if err != nil {
		return nil, evaluationError(EngineExpr, expression, "", err)
	}
	return &exprRule{evaluator: e, program: program, expression: expression}, nil
}

type exprRule struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
}

func (r *exprRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	env := ctx.variables()
	maps.Copy(env, r.evaluator.functionBindings())
	result, err := exprlang.Run(r.program, env)
	if err != nil {
		return nil, evaluationError(EngineExpr, r.expression, ctx.label(), err)
	}
	return result, nil
}
