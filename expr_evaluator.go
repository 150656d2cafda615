package menu

import (
	"errors"
	"maps"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures the expr engine.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache stores compiled programs in cache under "expr:"+source.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) { e.cache = cache }
}

// ExprWithFunctionRegistry makes every helper in registry callable by name.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry != nil {
			e.functions = registry.Clone()
		}
	}
}

// exprEvaluator is the default rule engine. Snapshot keys are top-level
// variables and unknown names evaluate to nil.
type exprEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewExprEvaluator returns the expr-lang engine.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Evaluate(ctx RuleContext, source string) (any, error) {
	program, err := e.program(source)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, source, program)
}

func (e *exprEvaluator) Compile(source string) (CompiledRule, error) {
	program, err := e.program(source)
	if err != nil {
		return nil, err
	}
	return exprRule{e: e, source: source, program: program}, nil
}

func (e *exprEvaluator) program(source string) (*exprvm.Program, error) {
	if source == "" {
		return nil, wrapEvaluatorError("expr", errors.New("expression must not be empty"))
	}
	key := "expr:" + source
	if e.cache != nil {
		if p, ok := e.cache.Get(key); ok {
			if program, ok := p.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}

	// now and args are declared so they resolve before the builtin now().
	opts := []exprlang.Option{
		exprlang.Env(map[string]any{"now": time.Time{}, "args": map[string]any{}}),
		exprlang.AllowUndefinedVariables(),
		exprlang.DisableBuiltin("now"),
	}
	for _, name := range e.functions.Names() {
		opts = append(opts, exprlang.Function(name, func(args ...any) (any, error) {
			return e.functions.Call(name, args...)
		}))
	}
	program, err := exprlang.Compile(source, opts...)
	if err != nil {
		return nil, wrapEvaluationError("expr", source, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *exprEvaluator) run(ctx RuleContext, source string, program *exprvm.Program) (any, error) {
	ctx = ctx.withDefaults()
	env := maps.Clone(ctx.Snapshot)
	env["now"] = ctx.timestamp()
	env["args"] = ctx.Args

	out, err := exprlang.Run(program, env)
	if err != nil {
		return nil, wrapEvaluationError("expr", source, err)
	}
	return out, nil
}

type exprRule struct {
	e       *exprEvaluator
	source  string
	program *exprvm.Program
}

func (r exprRule) Evaluate(ctx RuleContext) (any, error) {
	return r.e.run(ctx, r.source, r.program)
}
