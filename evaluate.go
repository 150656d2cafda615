package menu

import (
	"fmt"
	"time"
)

// Evaluate runs expr against the current Snapshot.
func (m *Manager) Evaluate(expr string) (any, error) {
	return m.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr against ctx, filling a nil snapshot from the
// Manager.
func (m *Manager) EvaluateWith(ctx RuleContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("menu: expression must not be empty")
	}
	evaluator, err := m.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = m.Snapshot()
	}
	if ctx.Now == nil {
		now := m.now()
		ctx.Now = &now
	}
	ctx = ctx.withDefaults()

	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, evalErr)
	m.cfg.logger.Log(LogEvent{
		Op:       "evaluate",
		Engine:   engine,
		Expr:     expr,
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return value, nil
}

// Condition evaluates expr and requires a boolean result.
func (m *Manager) Condition(expr string) (bool, error) {
	value, err := m.Evaluate(expr)
	if err != nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, &EvaluationError{
			Engine: evaluatorEngineName(m.currentEvaluator()),
			Expr:   expr,
			Err:    fmt.Errorf("%w: got %T", ErrConditionNotBoolean, value),
		}
	}
	return b, nil
}

// VisibleWhen returns a condition usable by render objects: it reports the
// boolean result of expr and false on any error.
func (m *Manager) VisibleWhen(expr string) func() bool {
	return func() bool {
		ok, err := m.Condition(expr)
		return err == nil && ok
	}
}

func (m *Manager) currentEvaluator() Evaluator {
	m.evalMu.Lock()
	defer m.evalMu.Unlock()
	return m.evaluator
}

func (m *Manager) resolveEvaluator() (Evaluator, error) {
	m.evalMu.Lock()
	defer m.evalMu.Unlock()
	if m.evaluator != nil {
		return m.evaluator, nil
	}
	var opts []ExprEvaluatorOption
	if m.cfg.programCache != nil {
		opts = append(opts, ExprWithProgramCache(m.cfg.programCache))
	}
	opts = append(opts, ExprWithFunctionRegistry(m.cfg.functions.withDefaults()))
	e := NewExprEvaluator(opts...)
	if e == nil {
		return nil, ErrNoEvaluator
	}
	m.evaluator = e
	return e, nil
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	}
	if isJSEvaluator(e) {
		return "js"
	}
	return "custom"
}
