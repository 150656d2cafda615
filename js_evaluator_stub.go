//go:build !js_eval

package menu

// NewJSEvaluator returns nil unless the module is built with the js_eval tag.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = collectJSOptions(opts)
	return nil
}

func isJSEvaluator(Evaluator) bool {
	return false
}
