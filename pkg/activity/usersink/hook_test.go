package usersink_test

import (
	"context"
	"testing"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-content/pkg/activity"
	"github.com/goliatone/go-content/pkg/activity/usersink"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsContentEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()

	event := activity.BuildContentUpdatedEvent(activity.ContentEventInput{
		ActorID:    actorID.String(),
		Section:    "hero",
		Tiers:      []string{"store"},
		OccurredAt: now,
	})
	event.TenantID = tenantID.String()
	event.Channel = "content"

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.TenantID != tenantID {
		t.Fatalf("expected tenant %s got %s", tenantID, record.TenantID)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected nil user id, got %s", record.UserID)
	}
	if record.Verb != activity.VerbContentUpdated || record.ObjectType != activity.ObjectSection || record.ObjectID != "hero" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "content" {
		t.Fatalf("expected channel content got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if _, ok := record.Data["actor"]; ok {
		t.Fatalf("uuid actors should not be copied into data: %v", record.Data)
	}
}

func TestHookNotifyDerivesActorFromUsername(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	event := activity.BuildMediaUploadedEvent("admin", "landing-page/abc", "https://cdn.example/abc.png")
	for i := 0; i < 2; i++ {
		if err := hook.Notify(context.Background(), event); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}
	first, second := sink.records[0], sink.records[1]
	if first.ActorID == uuid.Nil {
		t.Fatalf("expected derived actor id")
	}
	if first.ActorID != second.ActorID || first.ActorID != usersink.ActorUUID("admin") {
		t.Fatalf("expected stable actor id, got %s and %s", first.ActorID, second.ActorID)
	}
	if first.Data["actor"] != "admin" {
		t.Fatalf("expected username kept in data, got %v", first.Data)
	}
	if first.Data["url"] != "https://cdn.example/abc.png" {
		t.Fatalf("expected metadata passthrough, got %v", first.Data)
	}
}

func TestHookNotifySkipsIncompleteEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})
	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
}

func TestHookNotifyDefaultsTimestampAndNilSink(t *testing.T) {
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{Verb: "x", ObjectType: "y", ObjectID: "z"}); err != nil {
		t.Fatalf("nil sink: %v", err)
	}

	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}
	err := hook.Notify(context.Background(), activity.BuildContactSubmittedEvent("inq-1", "Spain"))
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted: %+v", sink.records)
	}
	if sink.records[0].ActorID != uuid.Nil {
		t.Fatalf("expected nil actor for anonymous event")
	}
}
