package activity

import "testing"

func TestBuildFieldChangedEventForComponent(t *testing.T) {
	event := BuildFieldChangedEvent(FieldsEventInput{
		DocumentID: "page-1",
		EntityID:   " c1 ",
		EntityType: "Text",
		Field:      "text",
		OldValue:   "x",
		NewValue:   "y",
		Metadata:   map[string]any{"source": "panel"},
	})

	if event.Verb != VerbFieldChanged || event.ObjectType != ObjectTypeComponent || event.ObjectID != "c1" {
		t.Fatalf("unexpected event identity: %+v", event)
	}
	want := map[string]any{
		"source":      "panel",
		"document_id": "page-1",
		"entity_type": "Text",
		"field":       "text",
		"old_value":   "x",
		"new_value":   "y",
		"delegated":   false,
	}
	for key, value := range want {
		if event.Metadata[key] != value {
			t.Fatalf("metadata[%q] = %v, want %v", key, event.Metadata[key], value)
		}
	}
}

func TestBuildFieldChangedEventForRootFallsBackToObjectType(t *testing.T) {
	event := BuildFieldChangedEvent(FieldsEventInput{Field: "title", Delegated: true})
	if event.ObjectType != ObjectTypeRoot || event.ObjectID != ObjectTypeRoot {
		t.Fatalf("unexpected root event identity: %+v", event)
	}
	if event.Metadata["delegated"] != true {
		t.Fatalf("expected delegated flag, got %v", event.Metadata["delegated"])
	}
	if _, ok := event.Metadata["old_value"]; ok {
		t.Fatalf("expected nil old value to be omitted")
	}
}

func TestBuildFieldsResolvedEventCopiesFieldNames(t *testing.T) {
	names := []string{"text", "size"}
	event := BuildFieldsResolvedEvent(FieldsEventInput{EntityID: "c1", EntityType: "Text", Fields: names, Seq: 3})
	if event.Verb != VerbFieldsResolved {
		t.Fatalf("unexpected verb %q", event.Verb)
	}
	got := event.Metadata["fields"].([]string)
	names[0] = "mutated"
	if got[0] != "text" || event.Metadata["seq"] != uint64(3) {
		t.Fatalf("unexpected metadata %+v", event.Metadata)
	}
}
