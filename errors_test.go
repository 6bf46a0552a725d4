package content

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapEvaluationErrorCreatesMetadata(t *testing.T) {
	base := errors.New("boom")
	err := wrapEvaluationError("expr", "len(items) > 0 && missing", "portfolio", base)

	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %T", err)
	}
	if evalErr.Engine != "expr" {
		t.Fatalf("expected engine expr, got %q", evalErr.Engine)
	}
	if evalErr.Expr != "len(items) > 0 && missing" {
		t.Fatalf("expected expression metadata, got %q", evalErr.Expr)
	}
	if evalErr.Section != "portfolio" {
		t.Fatalf("expected section metadata, got %q", evalErr.Section)
	}
	if !errors.Is(evalErr.Err, base) {
		t.Fatalf("wrapped error should unwrap to base error")
	}
}

func TestWrapEvaluationErrorAugmentsExisting(t *testing.T) {
	base := errors.New("compile failure")
	existing := &EvaluationError{
		Engine: "expr",
		Err:    base,
	}

	err := wrapEvaluationError("cel", "rule", "hero", existing)
	if !errors.Is(err, base) {
		t.Fatalf("expected base error to unwrap")
	}
	if existing.Engine != "expr" {
		t.Fatalf("existing engine should not be overwritten, got %q", existing.Engine)
	}
	if existing.Expr != "rule" {
		t.Fatalf("expression should be filled, got %q", existing.Expr)
	}
	if existing.Section != "hero" {
		t.Fatalf("section should be filled, got %q", existing.Section)
	}
}

func TestStorageErrorUnwrapsTierFailures(t *testing.T) {
	storeErr := errors.New("dial tcp: refused")
	err := &StorageError{
		Section: SectionHero,
		Failures: []TierFailure{
			{Tier: "store", Err: storeErr},
			{Tier: "file", Err: ErrReadOnly},
		},
	}

	if !errors.Is(err, storeErr) || !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected both tier errors to unwrap, got %v", err)
	}
	if IsNeedsConfiguration(err) {
		t.Fatalf("expected plain storage failure")
	}
	if !strings.Contains(err.Error(), "storage unavailable") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err.NeedsConfiguration = true
	if !IsNeedsConfiguration(err) {
		t.Fatalf("expected needs-configuration condition")
	}
	if !strings.Contains(err.Error(), "needs configuration") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := invalid(SectionHero, "ctaLink", "is required")
	if got := err.Error(); got != `content: invalid hero data: field "ctaLink" is required` {
		t.Fatalf("unexpected message %q", got)
	}
}
