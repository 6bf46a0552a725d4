package content

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
}{
	{
		name: EngineExpr,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
		},
	},
	{
		name: EngineCEL,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
		},
	},
	{
		name: EngineJS,
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
		},
	},
}

type fakeProgramCache struct {
	entries map[string]any
	hits    int
	misses  int
}

func (c *fakeProgramCache) Get(key string) (any, bool) {
	value, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return value, ok
}

func (c *fakeProgramCache) Set(key string, value any) {
	if c.entries == nil {
		c.entries = map[string]any{}
	}
	c.entries[key] = value
}

func loadFixture[T any](t *testing.T, name string) T {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
	return out
}

func TestContentRulesAcrossEvaluators(t *testing.T) {
	type expect struct {
		Value bool   `json:"value"`
		Err   string `json:"err"`
	}
	type testCase struct {
		Name    string            `json:"name"`
		Section Section           `json:"section"`
		Doc     json.RawMessage   `json:"doc"`
		Rules   map[string]string `json:"rules"`
		Expect  expect            `json:"expect"`
	}
	type fixture struct {
		Cases []testCase `json:"cases"`
	}

	fx := loadFixture[fixture](t, "content_rules.json")

	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, DefaultFunctions())
			if evaluator == nil {
				t.Skip("evaluator not available in this build")
			}
			for _, tc := range fx.Cases {
				t.Run(tc.Name, func(t *testing.T) {
					doc, err := decodeLoose(tc.Section, tc.Doc)
					if err != nil {
						t.Fatalf("decode doc: %v", err)
					}
					snapshot, err := snapshotOf(doc)
					if err != nil {
						t.Fatalf("snapshot: %v", err)
					}
					result, err := evaluator.Evaluate(RuleContext{Snapshot: snapshot, Section: tc.Section}, tc.Rules[factory.name])
					if tc.Expect.Err != "" {
						if err == nil || !strings.Contains(err.Error(), tc.Expect.Err) {
							t.Fatalf("expected error containing %q, got %v (result %v)", tc.Expect.Err, err, result)
						}
						var evalErr *EvaluationError
						if !errors.As(err, &evalErr) || evalErr.Engine != factory.name {
							t.Fatalf("expected EvaluationError from %s, got %T", factory.name, err)
						}
						return
					}
					if err != nil {
						t.Fatalf("evaluate: %v", err)
					}
					value, ok := result.(bool)
					if !ok {
						t.Fatalf("expected bool result, got %T (%v)", result, result)
					}
					if value != tc.Expect.Value {
						t.Fatalf("expected %v, got %v", tc.Expect.Value, value)
					}
				})
			}
		})
	}
}

// decodeLoose decodes fixture documents without running section validation,
// so rules can be exercised against partial documents.
func decodeLoose(section Section, raw json.RawMessage) (Document, error) {
	switch section {
	case SectionHero:
		var doc HeroContent
		err := json.Unmarshal(raw, &doc)
		return doc, err
	case SectionPortfolio:
		var doc PortfolioContent
		err := json.Unmarshal(raw, &doc)
		return doc, err
	case SectionContact:
		var doc ContactContent
		err := json.Unmarshal(raw, &doc)
		return doc, err
	default:
		return nil, ErrUnknownSection
	}
}

func TestEvaluatorProgramCache(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			cache := &fakeProgramCache{}
			evaluator := factory.new(cache, DefaultFunctions())
			if evaluator == nil {
				t.Skip("evaluator not available in this build")
			}
			snapshot, err := snapshotOf(DefaultSite().Hero)
			if err != nil {
				t.Fatalf("snapshot: %v", err)
			}
			for i := 0; i < 3; i++ {
				if _, err := evaluator.Evaluate(RuleContext{Snapshot: snapshot}, `title != ""`); err != nil {
					t.Fatalf("iteration %d: %v", i, err)
				}
			}
			if cache.misses != 1 || cache.hits != 2 {
				t.Fatalf("expected 1 miss and 2 hits, got misses=%d hits=%d", cache.misses, cache.hits)
			}
		})
	}
}

func TestEvaluatorsRejectEmptyExpressions(t *testing.T) {
	for _, factory := range evaluatorFactories {
		t.Run(factory.name, func(t *testing.T) {
			evaluator := factory.new(nil, nil)
			if evaluator == nil {
				t.Skip("evaluator not available in this build")
			}
			if _, err := evaluator.Evaluate(RuleContext{}, ""); err == nil {
				t.Fatalf("expected error for empty expression")
			}
			if _, err := evaluator.Compile(""); err == nil {
				t.Fatalf("expected compile error for empty expression")
			}
		})
	}
}

func TestRuleContextDefaults(t *testing.T) {
	ctx := RuleContext{}.withDefaults()
	if ctx.Now == nil || ctx.Now.IsZero() {
		t.Fatalf("expected now to be defaulted")
	}
	if ctx.Snapshot == nil || ctx.Metadata == nil {
		t.Fatalf("expected maps to be defaulted")
	}
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := (RuleContext{Now: &fixed}).timestamp(); !got.Equal(fixed) {
		t.Fatalf("explicit now must be kept, got %v", got)
	}
	if (RuleContext{}).sectionLabel() != "unknown" {
		t.Fatalf("expected unknown label for blank section")
	}
}

func TestSnapshotFillsOmittedFields(t *testing.T) {
	snapshot, err := snapshotOf(HeroContent{Title: "t", CTAText: "c", CTALink: "/"})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot["subtitle"] != "" {
		t.Fatalf("expected empty subtitle, got %#v", snapshot["subtitle"])
	}
	images, ok := snapshot["images"].([]any)
	if !ok || len(images) != 0 {
		t.Fatalf("expected empty images list, got %#v", snapshot["images"])
	}
}

func TestDefaultFunctions(t *testing.T) {
	registry := DefaultFunctions()
	tests := []struct {
		fn   string
		arg  any
		want any
	}{
		{fn: "isURL", arg: "https://example.com/x", want: true},
		{fn: "isURL", arg: "#contact", want: true},
		{fn: "isURL", arg: "/work", want: true},
		{fn: "isURL", arg: "example", want: false},
		{fn: "isEmail", arg: "hello@themovingsociety.com", want: true},
		{fn: "isEmail", arg: "Hello <hello@x.com>", want: false},
		{fn: "words", arg: "Where\nElegance Moves", want: 3},
	}
	for _, tt := range tests {
		got, err := registry.Call(tt.fn, tt.arg)
		if err != nil {
			t.Fatalf("%s(%v): %v", tt.fn, tt.arg, err)
		}
		if got != tt.want {
			t.Fatalf("%s(%v) = %v, want %v", tt.fn, tt.arg, got, tt.want)
		}
	}
	if _, err := registry.Call("isURL", 42); err == nil {
		t.Fatalf("expected type error")
	}
	if _, err := registry.Call("missing", "x"); err == nil {
		t.Fatalf("expected unknown function error")
	}
	if err := registry.Register("isURL", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
