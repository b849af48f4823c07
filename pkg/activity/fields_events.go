package activity

import "strings"

const (
	VerbFieldChanged   = "fields.changed"
	VerbFieldsResolved = "fields.resolved"

	ObjectTypeRoot      = "root"
	ObjectTypeComponent = "component"
)

// FieldsEventInput carries the details of a field edit or resolution.
type FieldsEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	DocumentID string
	EntityID   string
	// EntityType is empty for the root.
	EntityType string
	Field      string
	OldValue   any
	NewValue   any
	// Delegated marks edits handed to a data-resolution hook.
	Delegated bool
	Fields    []string
	Seq       uint64
	Metadata  map[string]any
}

// BuildFieldChangedEvent describes one committed or delegated field edit.
func BuildFieldChangedEvent(input FieldsEventInput) Event {
	metadata := baseMetadata(input)
	if input.Field != "" {
		metadata["field"] = input.Field
	}
	if input.OldValue != nil {
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata["new_value"] = input.NewValue
	}
	metadata["delegated"] = input.Delegated
	return buildEvent(VerbFieldChanged, input, metadata)
}

// BuildFieldsResolvedEvent describes a committed schema resolution.
func BuildFieldsResolvedEvent(input FieldsEventInput) Event {
	metadata := baseMetadata(input)
	metadata["fields"] = append([]string{}, input.Fields...)
	if input.Seq != 0 {
		metadata["seq"] = input.Seq
	}
	return buildEvent(VerbFieldsResolved, input, metadata)
}

func baseMetadata(input FieldsEventInput) map[string]any {
	metadata := cloneMap(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if input.DocumentID != "" {
		metadata["document_id"] = input.DocumentID
	}
	if input.EntityType != "" {
		metadata["entity_type"] = input.EntityType
	}
	return metadata
}

func buildEvent(verb string, input FieldsEventInput, metadata map[string]any) Event {
	objectType := ObjectTypeComponent
	if input.EntityType == "" {
		objectType = ObjectTypeRoot
	}
	objectID := strings.TrimSpace(input.EntityID)
	if objectID == "" {
		objectID = objectType
	}
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
	}
}
