package menu

// JSEvaluatorOption configures NewJSEvaluator. Options are accepted in every
// build so hosts compile without the js_eval tag.
type JSEvaluatorOption func(*jsOptions)

type jsOptions struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// JSWithProgramCache stores compiled scripts in cache under "js:"+source.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(o *jsOptions) { o.cache = cache }
}

// JSWithFunctionRegistry defines each helper as a script global and behind
// call(name, ...args).
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(o *jsOptions) { o.functions = registry.Clone() }
}

func collectJSOptions(opts []JSEvaluatorOption) (o jsOptions) {
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
