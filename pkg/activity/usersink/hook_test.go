package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-fields/pkg/activity"
	"github.com/goliatone/go-fields/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsFieldChangedEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	actorID := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	event := activity.BuildFieldChangedEvent(activity.FieldsEventInput{
		ActorID:    actorID.String(),
		UserID:     "not-a-uuid",
		EntityID:   "c1",
		EntityType: "Text",
		Field:      "text",
		NewValue:   "y",
		Channel:    "fields",
	})
	event.OccurredAt = now

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s, got %s", actorID, record.ActorID)
	}
	if record.UserID != uuid.Nil {
		t.Fatalf("expected nil user id for invalid input, got %s", record.UserID)
	}
	if record.Verb != activity.VerbFieldChanged || record.ObjectType != "component" || record.ObjectID != "c1" {
		t.Fatalf("unexpected record identity: %+v", record)
	}
	if record.Data["field"] != "text" || record.Data["new_value"] != "y" {
		t.Fatalf("unexpected record data: %+v", record.Data)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at preserved, got %v", record.OccurredAt)
	}
}

func TestHookFiltersVerbsAndSkipsIncomplete(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink, Verbs: []string{activity.VerbFieldChanged}}

	resolved := activity.BuildFieldsResolvedEvent(activity.FieldsEventInput{EntityID: "c1", EntityType: "Text"})
	if err := hook.Notify(context.Background(), resolved); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := hook.Notify(context.Background(), activity.Event{Verb: activity.VerbFieldChanged}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected nothing forwarded, got %d", len(sink.records))
	}
}

func TestHookPropagatesSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}
	event := activity.BuildFieldChangedEvent(activity.FieldsEventInput{Field: "title"})
	if err := hook.Notify(context.Background(), event); !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestHookWithoutSinkIsNoop(t *testing.T) {
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
