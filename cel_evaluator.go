package menu

import (
	"errors"
	"maps"
	"slices"
	"strings"

	celgo "github.com/google/cel-go/cel"
	functions "github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// CELEvaluatorOption configures the CEL engine.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache stores programs under "cel:" + variable set + source.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) { e.cache = cache }
}

// CELWithFunctionRegistry makes the helpers reachable as call(name, [args]).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) { e.functions = registry.Clone() }
}

// celEvaluator type-checks against the snapshot it is given: every key that
// is an identifier becomes a dyn variable, so a program is only valid for the
// variable set it was compiled with.
type celEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewCELEvaluator returns the cel-go engine.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx RuleContext, source string) (any, error) {
	if source == "" {
		return nil, wrapEvaluatorError("cel", errors.New("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.program(source, celVariables(ctx.Snapshot))
	if err != nil {
		return nil, wrapEvaluationError("cel", source, err)
	}

	vars := maps.Clone(ctx.Snapshot)
	vars["now"] = ctx.timestamp()
	vars["args"] = ctx.Args
	out, _, err := program.Eval(vars)
	if err != nil {
		return nil, wrapEvaluationError("cel", source, err)
	}
	return out.Value(), nil
}

// Compile returns a rule that compiles on first use per variable set.
func (e *celEvaluator) Compile(source string) (CompiledRule, error) {
	if source == "" {
		return nil, wrapEvaluatorError("cel", errors.New("expression must not be empty"))
	}
	return celRule{e: e, source: source}, nil
}

func (e *celEvaluator) program(source string, vars []string) (celgo.Program, error) {
	key := "cel:" + strings.Join(vars, ",") + ":" + source
	if e.cache != nil {
		if p, ok := e.cache.Get(key); ok {
			if program, ok := p.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
	}
	for _, name := range vars {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	if e.functions != nil {
		opts = append(opts, celgo.Function("call", celgo.Overload("call_string_list",
			[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)}, celgo.DynType,
			celgo.BinaryBinding(e.call()))))
	}
	env, err := celgo.NewEnv(opts...)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(source)
	if err := issues.Err(); err != nil {
		return nil, err
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *celEvaluator) call() functions.BinaryOp {
	return func(name, list ref.Val) ref.Val {
		fn, ok := name.Value().(string)
		if !ok {
			return types.NewErr("menu: call name must be a string")
		}
		var args []any
		if l, ok := list.(traits.Lister); ok {
			for it := l.Iterator(); it.HasNext() == types.True; {
				args = append(args, it.Next().Value())
			}
		}
		out, err := e.functions.Call(fn, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if out == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(out)
	}
}

type celRule struct {
	e      *celEvaluator
	source string
}

func (r celRule) Evaluate(ctx RuleContext) (any, error) {
	return r.e.Evaluate(ctx, r.source)
}

// celVariables lists the snapshot keys that can be declared, sorted. The
// reserved now and args names are declared separately.
func celVariables(snapshot map[string]any) []string {
	var names []string
	for key := range snapshot {
		if key != "now" && key != "args" && identifierPattern.MatchString(key) {
			names = append(names, key)
		}
	}
	slices.Sort(names)
	return names
}
