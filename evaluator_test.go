package postfix

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-postfix/adapter"
	"github.com/goliatone/go-postfix/source"
)

func TestEvaluationErrorWrapsAndFills(t *testing.T) {
	base := errors.New("boom")
	err := evaluationError(EngineExpr, "database.port > missing", "dev", base)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, EvaluationError{Engine: EngineExpr, Expr: "database.port > missing", Postfix: "dev", Err: base}, *evalErr)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, `postfix: expr evaluator: "database.port > missing" for dev: boom`, err.Error())

	existing := &EvaluationError{Engine: EngineExpr, Err: base}
	err = evaluationError(EngineCEL, "rule", "cs", existing)
	assert.Same(t, existing, err)
	assert.Equal(t, EngineExpr, existing.Engine, "set fields are kept")
	assert.Equal(t, "rule", existing.Expr)
	assert.Equal(t, "cs", existing.Postfix)

	assert.NoError(t, evaluationError(EngineJS, "x", "", nil))
	assert.Contains(t, (&EvaluationError{Engine: EngineCEL, Err: base}).Error(), "<empty>")
}

func TestEmptyExpressionIsRejectedByEveryEvaluator(t *testing.T) {
	for _, evaluator := range []Evaluator{NewExprEvaluator(), NewCELEvaluator()} {
		_, err := evaluator.Compile("")
		assert.ErrorIs(t, err, ErrEmptyExpression)
		_, err = evaluator.Evaluate(RuleContext{}, "")
		assert.ErrorIs(t, err, ErrEmptyExpression)
	}
}

func TestCompiledRulesEvaluatePerContext(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			rule, err := factory.new().Compile(`region == "eu" && postfix.name == "eu"`)
			require.NoError(t, err)

			got, err := rule.Evaluate(RuleContext{Postfix: "eu", Snapshot: map[string]any{"region": "eu"}})
			require.NoError(t, err)
			assert.Equal(t, true, got)

			got, err = rule.Evaluate(RuleContext{Postfix: "us", Snapshot: map[string]any{"region": "us"}})
			require.NoError(t, err)
			assert.Equal(t, false, got)
		})
	}
}

func TestSharedProgramCacheScopesKeys(t *testing.T) {
	cache := NewProgramCache()
	ctx := RuleContext{Snapshot: map[string]any{"port": int64(8080)}}

	for _, factory := range evaluatorFactories {
		got, err := factory.new(EvaluatorProgramCache(cache)).Evaluate(ctx, "port > 1024")
		require.NoError(t, err, factory.name)
		assert.Equal(t, true, got, factory.name)
	}

	_, ok := cache.Get(programKey(EngineExpr, "port > 1024"))
	assert.True(t, ok)
	_, ok = cache.Get(programKey(EngineCEL, "port > 1024", "port"))
	assert.True(t, ok)
}

func TestCELRecompilesWhenDocumentKeysChange(t *testing.T) {
	memory := source.NewMemory()
	memory.PutString("", `{"port":8080}`)
	cache := &fakeProgramCache{}
	e, err := LoadFrom(context.Background(), memory, adapter.NewJSON(), WithEvaluator(NewCELEvaluator(EvaluatorProgramCache(cache))))
	require.NoError(t, err)

	resp, err := e.Evaluate("port == 8080")
	require.NoError(t, err)
	assert.Equal(t, true, resp.Value)

	memory.PutString("", `{"port":9090,"host":"db"}`)
	require.NoError(t, e.LoadFrom(context.Background(), memory))

	resp, err = e.Evaluate(`host == "db" && port == 9090`)
	require.NoError(t, err)
	assert.Equal(t, true, resp.Value)
	assert.Equal(t, 2, cache.misses)
}

func TestDefaultEvaluatorUsesEngineProgramCache(t *testing.T) {
	cache := &fakeProgramCache{}
	e := loadEngine(t, adapter.NewJSON(), map[string]string{"": `{"port":8080}`}, WithProgramCache(cache))

	for range 3 {
		_, err := e.Evaluate("port > 1024")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, cache.misses)
	assert.Equal(t, 2, cache.hits)
}

func TestFunctionBindings(t *testing.T) {
	cfg := newEvaluatorConfig([]EvaluatorOption{EvaluatorFunctions(NewDocumentFunctions())})
	bindings := cfg.functionBindings()
	require.Contains(t, bindings, "call")
	require.Contains(t, bindings, "joinPath")

	join := bindings["joinPath"].(func(...any) (any, error))
	got, err := join("db", "", "host")
	require.NoError(t, err)
	assert.Equal(t, "db.host", got)

	call := bindings["call"].(func(string, ...any) (any, error))
	got, err = call("label", "")
	require.NoError(t, err)
	assert.Equal(t, "default", got)

	assert.Nil(t, evaluatorConfig{}.functionBindings())
}
