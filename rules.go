package content

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Rule engines accepted by NewEvaluator.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// NewEvaluator returns the evaluator for engine, sharing cache and registry.
// An empty engine selects expr. The js engine is only available in builds
// tagged js_eval.
func NewEvaluator(engine string, cache ProgramCache, registry *FunctionRegistry) (Evaluator, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry)), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry)), nil
	default:
		return nil, fmt.Errorf("%w: unknown rule engine %q", ErrNoEvaluator, engine)
	}
}

// RuleSetOption configures a RuleSet.
type RuleSetOption func(*ruleSetConfig)

type ruleSetConfig struct {
	registry *FunctionRegistry
	cache    ProgramCache
	metadata map[string]any
	now      func() time.Time
}

// WithRuleFunctions replaces the default function registry.
func WithRuleFunctions(registry *FunctionRegistry) RuleSetOption {
	return func(cfg *ruleSetConfig) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithRuleMetadata exposes static values to rules as `metadata`.
func WithRuleMetadata(metadata map[string]any) RuleSetOption {
	return func(cfg *ruleSetConfig) {
		cfg.metadata = metadata
	}
}

// WithRuleClock overrides the clock bound to `now`.
func WithRuleClock(now func() time.Time) RuleSetOption {
	return func(cfg *ruleSetConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

type sectionRule struct {
	expression string
	program    CompiledRule
}

// RuleSet holds operator-defined boolean expressions checked on top of the
// built-in section validation before a write reaches any tier.
type RuleSet struct {
	engine   string
	rules    map[Section][]sectionRule
	metadata map[string]any
	now      func() time.Time
}

// NewRuleSet compiles rules for engine. Every expression must evaluate to
// true for a document to be accepted.
func NewRuleSet(engine string, rules map[Section][]string, opts ...RuleSetOption) (*RuleSet, error) {
	cfg := ruleSetConfig{
		registry: DefaultFunctions(),
		cache:    NewProgramCache(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	evaluator, err := NewEvaluator(engine, cfg.cache, cfg.registry)
	if err != nil {
		return nil, err
	}
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}

	set := &RuleSet{
		engine:   strings.ToLower(strings.TrimSpace(engine)),
		rules:    make(map[Section][]sectionRule, len(rules)),
		metadata: cfg.metadata,
		now:      cfg.now,
	}
	if set.engine == "" {
		set.engine = EngineExpr
	}
	for section, expressions := range rules {
		if !section.Valid() {
			return nil, fmt.Errorf("%w: %q in rules", ErrUnknownSection, section)
		}
		for _, expression := range expressions {
			expression = strings.TrimSpace(expression)
			if expression == "" {
				continue
			}
			program, err := evaluator.Compile(expression)
			if err != nil {
				return nil, err
			}
			set.rules[section] = append(set.rules[section], sectionRule{
				expression: expression,
				program:    program,
			})
		}
	}
	return set, nil
}

// Engine names the evaluator backing the set.
func (r *RuleSet) Engine() string {
	if r == nil {
		return ""
	}
	return r.engine
}

// Expressions returns the configured expressions per section, sorted by
// section name.
func (r *RuleSet) Expressions() map[Section][]string {
	out := map[Section][]string{}
	if r == nil {
		return out
	}
	sections := make([]string, 0, len(r.rules))
	for section := range r.rules {
		sections = append(sections, string(section))
	}
	sort.Strings(sections)
	for _, name := range sections {
		for _, rule := range r.rules[Section(name)] {
			out[Section(name)] = append(out[Section(name)], rule.expression)
		}
	}
	return out
}

// Check evaluates every rule registered for section against doc. The first
// rule that errors or yields anything but true is reported as a
// *ValidationError on the "rules" field.
func (r *RuleSet) Check(section Section, doc Document) error {
	if r == nil || len(r.rules[section]) == 0 {
		return nil
	}
	snapshot, err := snapshotOf(doc)
	if err != nil {
		return &ValidationError{Section: section, Field: "rules", Reason: "could not be evaluated", Err: err}
	}
	now := r.now()
	ctx := RuleContext{
		Snapshot: snapshot,
		Now:      &now,
		Section:  section,
		Metadata: r.metadata,
	}
	for _, rule := range r.rules[section] {
		result, err := rule.program.Evaluate(ctx)
		if err != nil {
			return &ValidationError{
				Section: section,
				Field:   "rules",
				Reason:  fmt.Sprintf("could not evaluate %q", rule.expression),
				Err:     err,
			}
		}
		if ok, isBool := result.(bool); !isBool || !ok {
			return &ValidationError{
				Section: section,
				Field:   "rules",
				Reason:  fmt.Sprintf("violates %q", rule.expression),
			}
		}
	}
	return nil
}
