package content

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

// RuleContext carries the inputs needed when evaluating a content rule.
type RuleContext struct {
	Snapshot map[string]any
	Now      *time.Time
	Section  Section
	Metadata map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) sectionLabel() string {
	if ctx.Section != "" {
		return string(ctx.Section)
	}
	return "unknown"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// snapshotOf converts a document into the generic map rules see, keyed by the
// document's JSON field names. Optional fields left out by omitempty are
// filled with empty values so every document of a section exposes the same
// variables.
func snapshotOf(doc Document) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	rt := reflect.TypeOf(doc)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		if current, ok := out[name]; ok && current != nil {
			continue
		}
		switch field.Type.Kind() {
		case reflect.String:
			out[name] = ""
		case reflect.Slice:
			out[name] = []any{}
		default:
			out[name] = nil
		}
	}
	return out, nil
}
