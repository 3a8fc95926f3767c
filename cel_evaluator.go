package postfix

import (
	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// celEvaluator runs expressions with cel-go. Every top-level document key
// is declared as a dyn variable, so programs are compiled per distinct set
// of document keys.
type celEvaluator struct {
	evaluatorConfig
}

// NewCELEvaluator returns an Evaluator backed by cel-go. Registered
// functions are reachable through call("name", [args]).
func NewCELEvaluator(opts ...EvaluatorOption) Evaluator {
	return &celEvaluator{evaluatorConfig: newEvaluatorConfig(opts)}
}

func (e *celEvaluator) engineName() string { return EngineCEL }

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, evaluationError(EngineCEL, expression, ctx.label(), err)
	}
	return rule.Evaluate(ctx)
}

// Compile validates expression is non-empty. Checking is deferred to the
// first evaluation, when the document keys are known.
func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, evaluationError(EngineCEL, expression, "", ErrEmptyExpression)
	}
	return &celRule{evaluator: e, expression: expression}, nil
}

func (e *celEvaluator) program(expression string, keys []string) (celgo.Program, error) {
	return compiledProgram(e.cache, programKey(EngineCEL, expression, keys...), func() (celgo.Program, error) {
		env, err := e.env(keys)
		if err != nil {
			return nil, err
		}
		ast, issues := env.Compile(expression)
		if issues != nil && issues.Err() != nil {
			return nil, issues.Err()
		}
		return env.Program(ast)
	})
}

func (e *celEvaluator) env(keys []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("metadata", celgo.DynType),
		celgo.Variable("postfix", celgo.DynType),
	}
	for _, key := range keys {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	if e.functions != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.UnaryBinding(func(name ref.Val) ref.Val {
					return e.call(name, nil)
				}),
			),
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(func(name, args ref.Val) ref.Val {
					list, _ := args.(traits.Lister)
					return e.call(name, list)
				}),
			),
		))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) call(name ref.Val, list traits.Lister) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("postfix: call name must be a string")
	}
	var args []any
	if list != nil {
		size, _ := list.Size().Value().(int64)
		args = make([]any, 0, size)
		for i := int64(0); i < size; i++ {
			args = append(args, list.Get(types.Int(i)).Value())
		}
	}
	result, err := e.functions.Call(fn, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celRule struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	program, err := r.evaluator.program(r.expression, ctx.documentKeys())
	if err != nil {
		return nil, evaluationError(EngineCEL, r.expression, ctx.label(), err)
	}
	out, _, err := program.Eval(ctx.variables())
	if err != nil {
		return nil, evaluationError(EngineCEL, r.expression, ctx.label(), err)
	}
	return out.Value(), nil
}
