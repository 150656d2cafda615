package menu

import (
	"time"
)

// RuleContext is the input of a rule evaluation.
type RuleContext struct {
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

// Evaluator runs rule expressions against a settings snapshot.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule is a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// ProgramCache stores compiled programs keyed by expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithEvaluator selects the rule engine. The expr engine is used otherwise.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *managerConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache shares compiled programs across evaluations.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *managerConfig) {
		cfg.programCache = cache
	}
}
