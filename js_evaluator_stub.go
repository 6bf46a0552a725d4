//go:build !js_eval

package content

// NewJSEvaluator returns nil unless the binary is built with the js_eval tag.
// NewRuleSet reports ErrNoEvaluator in that case.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
