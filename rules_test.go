package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewRuleSetRejectsBadConfiguration(t *testing.T) {
	if _, err := NewRuleSet("lua", nil); !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator for unknown engine, got %v", err)
	}
	if !jsEvaluatorAvailable() {
		if _, err := NewRuleSet(EngineJS, nil); !errors.Is(err, ErrNoEvaluator) {
			t.Fatalf("expected ErrNoEvaluator without js_eval, got %v", err)
		}
	}
	if _, err := NewRuleSet(EngineExpr, map[Section][]string{"footer": {"true"}}); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
	if _, err := NewRuleSet(EngineExpr, map[Section][]string{SectionHero: {"title =="}}); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestRuleSetCheck(t *testing.T) {
	rules, err := NewRuleSet("", map[Section][]string{
		SectionHero:      {"isURL(ctaLink)", "  ", "words(title) <= 8"},
		SectionPortfolio: {"len(items) <= 6"},
	})
	if err != nil {
		t.Fatalf("new rule set: %v", err)
	}
	if rules.Engine() != EngineExpr {
		t.Fatalf("expected expr default engine, got %q", rules.Engine())
	}
	if got := rules.Expressions()[SectionHero]; len(got) != 2 {
		t.Fatalf("blank expressions must be dropped, got %v", got)
	}

	if err := rules.Check(SectionHero, DefaultSite().Hero); err != nil {
		t.Fatalf("default hero should pass: %v", err)
	}
	if err := rules.Check(SectionContact, ContactContent{}); err != nil {
		t.Fatalf("sections without rules must pass: %v", err)
	}

	bad := DefaultSite().Hero
	bad.CTALink = "contact"
	err = rules.Check(SectionHero, bad)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validationErr.Field != "rules" || !strings.Contains(validationErr.Reason, "isURL(ctaLink)") {
		t.Fatalf("unexpected validation error: %+v", validationErr)
	}

	crowded := DefaultSite().Portfolio
	crowded.Items = append(crowded.Items, PortfolioItem{ID: "7"})
	if err := rules.Check(SectionPortfolio, crowded); err == nil {
		t.Fatalf("expected item cap violation")
	}

	var nilSet *RuleSet
	if err := nilSet.Check(SectionHero, bad); err != nil {
		t.Fatalf("nil rule set must accept everything: %v", err)
	}
}

func TestRuleSetNonBooleanResultViolates(t *testing.T) {
	rules, err := NewRuleSet(EngineCEL, map[Section][]string{SectionContact: {"title"}})
	if err != nil {
		t.Fatalf("new rule set: %v", err)
	}
	if err := rules.Check(SectionContact, DefaultSite().Contact); err == nil {
		t.Fatalf("expected string result to be rejected")
	}
}

func TestRuleSetClockAndMetadata(t *testing.T) {
	launch := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rules, err := NewRuleSet(EngineExpr,
		map[Section][]string{SectionContact: {`now.Year() >= metadata.minYear`}},
		WithRuleClock(func() time.Time { return launch }),
		WithRuleMetadata(map[string]any{"minYear": 2025}),
	)
	if err != nil {
		t.Fatalf("new rule set: %v", err)
	}
	if err := rules.Check(SectionContact, DefaultSite().Contact); err != nil {
		t.Fatalf("expected rule to pass at launch: %v", err)
	}
}

func TestExprRulesSeeInjectedClock(t *testing.T) {
	for _, tc := range []struct {
		name string
		now  time.Time
		ok   bool
	}{
		{name: "before cutoff", now: time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC), ok: false},
		{name: "after cutoff", now: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), ok: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			now := tc.now
			rules, err := NewRuleSet(EngineExpr,
				map[Section][]string{SectionHero: {`now.Year() > 2020`}},
				WithRuleClock(func() time.Time { return now }),
			)
			if err != nil {
				t.Fatalf("new rule set: %v", err)
			}
			err = rules.Check(SectionHero, DefaultSite().Hero)
			if tc.ok && err != nil {
				t.Fatalf("expected pass, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected the injected clock to fail the rule")
			}
		})
	}
}

func TestResolverAppliesRulesBeforeTiers(t *testing.T) {
	rules, err := NewRuleSet(EngineExpr, map[Section][]string{SectionContact: {"isEmail(email)"}})
	if err != nil {
		t.Fatalf("new rule set: %v", err)
	}
	tier := &countingTier{}
	resolver := NewResolver(WithStoreTier(tier), WithRules(rules))

	_, err = resolver.Write(context.Background(), SectionContact, ContactContent{Title: "t", Subtitle: "s", Email: "nope"})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "rules" {
		t.Fatalf("expected rules violation, got %v", err)
	}
	if tier.sets != 0 {
		t.Fatalf("tier must not be touched")
	}

	if _, err := resolver.Write(context.Background(), SectionContact, DefaultSite().Contact); err != nil {
		t.Fatalf("write: %v", err)
	}
	if tier.sets != 1 {
		t.Fatalf("expected one write, got %d", tier.sets)
	}
}

type countingTier struct {
	sets int
}

func (*countingTier) Name() string     { return SourceStore }
func (*countingTier) Configured() bool { return true }
func (*countingTier) Get(context.Context, Section) Lookup {
	return AbsentLookup(nil)
}
func (c *countingTier) Set(context.Context, Section, Document) error {
	c.sets++
	return nil
}
