package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	content "github.com/goliatone/go-content"
	"github.com/goliatone/go-content/pkg/store/memory"
)

func TestTierRoundTrip(t *testing.T) {
	ctx := context.Background()
	tier := memory.New("store")

	if got := tier.Get(ctx, content.SectionContact); got.Status != content.Absent {
		t.Fatalf("expected absent, got %s", got.Status)
	}

	want := content.ContactContent{Title: "Hi", Subtitle: "Talk", Email: "a@b.co"}
	if err := tier.Set(ctx, content.SectionContact, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got := tier.Get(ctx, content.SectionContact)
	if !got.Ok() {
		t.Fatalf("expected found, got %s (%v)", got.Status, got.Err)
	}
	if diff := cmp.Diff(want, got.Document); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
	if tier.LastWrite() != content.SectionContact {
		t.Fatalf("unexpected last write %q", tier.LastWrite())
	}
}

func TestTierReportsMalformedPayloads(t *testing.T) {
	tier := memory.New("store")
	tier.PutRaw(content.SectionHero, []byte(`{"title":"only"}`))
	tier.PutRaw(content.SectionContact, []byte(`not json`))

	for _, section := range []content.Section{content.SectionHero, content.SectionContact} {
		got := tier.Get(context.Background(), section)
		if got.Status != content.Malformed {
			t.Fatalf("%s: expected malformed, got %s", section, got.Status)
		}
		var validationErr *content.ValidationError
		if !errors.As(got.Err, &validationErr) {
			t.Fatalf("%s: expected validation error, got %v", section, got.Err)
		}
	}
}

func TestTierInjectedFailures(t *testing.T) {
	ctx := context.Background()
	tier := memory.New("store")
	boom := errors.New("boom")
	tier.FailWrites(boom)

	err := tier.Set(ctx, content.SectionHero, content.Default(content.SectionHero))
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if _, ok := tier.Raw(content.SectionHero); ok {
		t.Fatalf("failed write must not be stored")
	}

	tier.FailWrites(nil)
	if err := tier.Set(ctx, content.SectionHero, content.Default(content.SectionHero)); err != nil {
		t.Fatalf("set: %v", err)
	}
	tier.FailReads(true)
	got := tier.Get(ctx, content.SectionHero)
	if got.Status != content.Absent || !errors.Is(got.Err, memory.ErrReadFailure) {
		t.Fatalf("expected absent read failure, got %s (%v)", got.Status, got.Err)
	}

	gets, sets := tier.Calls()
	if gets != 1 || sets != 2 {
		t.Fatalf("unexpected call counts gets=%d sets=%d", gets, sets)
	}
}

func TestUnconfiguredOption(t *testing.T) {
	if memory.New("store", memory.Unconfigured()).Configured() {
		t.Fatalf("expected unconfigured tier")
	}
}
