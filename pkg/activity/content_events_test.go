package activity

import (
	"testing"
	"time"
)

func TestBuildContentUpdatedEvent(t *testing.T) {
	at := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	evt := BuildContentUpdatedEvent(ContentEventInput{
		ActorID:    " admin ",
		Section:    "portfolio",
		Tiers:      []string{"store", "file"},
		Source:     "api",
		OccurredAt: at,
	})

	if evt.Verb != VerbContentUpdated || evt.ObjectType != ObjectSection || evt.ObjectID != "portfolio" {
		t.Fatalf("unexpected event identity: %+v", evt)
	}
	if evt.ActorID != "admin" {
		t.Fatalf("expected trimmed actor, got %q", evt.ActorID)
	}
	tiers, ok := evt.Metadata["tiers"].([]string)
	if !ok || len(tiers) != 2 || tiers[0] != "store" || tiers[1] != "file" {
		t.Fatalf("unexpected tiers metadata: %#v", evt.Metadata["tiers"])
	}
	if evt.Metadata["source"] != "api" {
		t.Fatalf("expected source metadata, got %#v", evt.Metadata)
	}
	if !evt.OccurredAt.Equal(at) {
		t.Fatalf("expected occurred at preserved")
	}
}

func TestBuildContentUpdatedEventDoesNotAliasInput(t *testing.T) {
	meta := map[string]any{"request_id": "r1"}
	evt := BuildContentUpdatedEvent(ContentEventInput{Section: "hero", Source: "cli", Metadata: meta})
	if _, ok := meta["source"]; ok {
		t.Fatalf("input metadata mutated: %#v", meta)
	}
	if evt.Metadata["request_id"] != "r1" {
		t.Fatalf("expected metadata carried over: %#v", evt.Metadata)
	}
}

func TestBuildersFallBackToObjectType(t *testing.T) {
	tests := []struct {
		name string
		evt  Event
		want string
	}{
		{name: "content", evt: BuildContentUpdatedEvent(ContentEventInput{}), want: ObjectSection},
		{name: "file", evt: BuildFileChangedEvent(" ", "", time.Time{}), want: ObjectSection},
		{name: "media", evt: BuildMediaUploadedEvent("", "", ""), want: ObjectAsset},
		{name: "contact", evt: BuildContactSubmittedEvent("", ""), want: ObjectInquiry},
		{name: "redeploy", evt: BuildRedeployTriggeredEvent("", "", ""), want: ObjectDeployment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.evt.ObjectID != tt.want {
				t.Fatalf("expected object id %q, got %q", tt.want, tt.evt.ObjectID)
			}
			if !NormalizeEvent(tt.evt).Valid() {
				t.Fatalf("expected event to be valid: %+v", tt.evt)
			}
		})
	}
}

func TestBuildContactSubmittedEventKeepsOnlyCountry(t *testing.T) {
	evt := BuildContactSubmittedEvent("inq-1", "Spain")
	if len(evt.Metadata) != 1 || evt.Metadata["country"] != "Spain" {
		t.Fatalf("unexpected metadata: %#v", evt.Metadata)
	}
}
