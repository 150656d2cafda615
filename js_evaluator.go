//go:build js_eval

package menu

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewJSEvaluator returns an Evaluator running expressions on goja. Each
// evaluation gets a fresh runtime; compiled programs are shared through the
// cache when one is configured.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	o := collectJSOptions(opts)
	return &jsEvaluator{cache: o.cache, functions: o.functions}
}

func (e *jsEvaluator) Evaluate(ctx RuleContext, expr string) (any, error) {
	program, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	return e.run(ctx.withDefaults(), program)
}

func (e *jsEvaluator) Compile(expr string) (CompiledRule, error) {
	program, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{evaluator: e, program: program}, nil
}

func (e *jsEvaluator) program(expr string) (*goja.Program, error) {
	if expr == "" {
		return nil, fmt.Errorf("menu: expression must not be empty")
	}
	key := "js:" + expr
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("rule", "(function(){ return ("+expr+"); })()", true)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx RuleContext, program *goja.Program) (any, error) {
	vm := goja.New()
	for name, value := range ctx.Snapshot {
		if err := vm.Set(name, value); err != nil {
			return nil, err
		}
	}
	if err := vm.Set("now", ctx.timestamp()); err != nil {
		return nil, err
	}
	if err := vm.Set("args", ctx.Args); err != nil {
		return nil, err
	}
	if e.functions != nil {
		call := func(name string, args ...any) (any, error) {
			return e.functions.Call(name, args...)
		}
		if err := vm.Set("call", call); err != nil {
			return nil, err
		}
		for _, name := range e.functions.Names() {
			fn := name
			if err := vm.Set(fn, func(args ...any) (any, error) {
				return e.functions.Call(fn, args...)
			}); err != nil {
				return nil, err
			}
		}
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

type jsCompiledRule struct {
	evaluator *jsEvaluator
	program   *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	return r.evaluator.run(ctx.withDefaults(), r.program)
}

func isJSEvaluator(e Evaluator) bool {
	_, ok := e.(*jsEvaluator)
	return ok
}
