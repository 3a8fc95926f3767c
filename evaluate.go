package postfix

import (
	"time"
)

// Evaluate runs expr with the document merged along the engine's chain as
// variables.
func (e *Engine) Evaluate(expr string) (Response[any], error) {
	return e.EvaluateWith(RuleContext{}, expr)
}

// EvaluateFor runs expr against the document merged for postfix.
func (e *Engine) EvaluateFor(postfix, expr string) (Response[any], error) {
	return e.EvaluateWith(RuleContext{Postfix: postfix}, expr)
}

// EvaluateWith executes expr using ctx. A nil ctx.Snapshot is filled with
// the document merged for ctx.Postfix, and an empty ctx.Chain with the probe
// sequence that produced it.
func (e *Engine) EvaluateWith(ctx RuleContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, ErrEmptyExpression
	}
	evaluator := e.resolveEvaluator()
	if ctx.Snapshot == nil {
		doc, probe, err := e.document(ctx.Postfix, ctx.Postfix != "")
		if err != nil {
			return Response[any]{}, err
		}
		if snapshot, ok := doc.ToAny().(map[string]any); ok {
			ctx.Snapshot = snapshot
		}
		if len(ctx.Chain) == 0 {
			ctx.Chain = probe
		}
	}
	ctx = ctx.withDefaults()

	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	result, err := evaluator.Evaluate(ctx, expr)
	err = evaluationError(engine, expr, ctx.label(), err)
	e.cfg.evaluatorLogger.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Postfix:  ctx.label(),
		Chain:    ctx.chainLabel(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return Response[any]{}, err
	}
	return Response[any]{Value: result}, nil
}

// resolveEvaluator returns the configured evaluator, building the default
// expr evaluator over the engine's program cache and functions on first use.
func (e *Engine) resolveEvaluator() Evaluator {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cfg.evaluator == nil {
		e.cfg.evaluator = NewExprEvaluator(
			EvaluatorProgramCache(e.cfg.programCache),
			EvaluatorFunctions(e.cfg.functions),
		)
	}
	return e.cfg.evaluator
}
