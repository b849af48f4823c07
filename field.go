package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Field describes how one property of an entity is edited.
type Field struct {
	Type         string         `json:"type"`
	Label        string         `json:"label,omitempty"`
	Options      []FieldOption  `json:"options,omitempty"`
	ArrayFields  Schema         `json:"arrayFields,omitempty"`
	ObjectFields Schema         `json:"objectFields,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`

	// Render is an opaque handle for custom renderers; it is carried through
	// resolution untouched.
	Render any `json:"-"`
}

// FieldOption is one choice of a select or radio field.
type FieldOption struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Entry pairs a field with its name.
type Entry struct {
	Name  string
	Field Field
}

// Schema is an ordered set of fields. The zero value is an empty schema and
// all methods return copies, so a Schema can be shared freely.
type Schema struct {
	names  []string
	fields map[string]Field
}

// NewSchema builds a schema from entries in order. A repeated name replaces the
// earlier field but keeps its position.
func NewSchema(entries ...Entry) Schema {
	s := Schema{}
	for _, entry := range entries {
		s = s.With(entry.Name, entry.Field)
	}
	return s
}

// Len returns the number of fields.
func (s Schema) Len() int { return len(s.names) }

// IsEmpty reports whether the schema has no fields.
func (s Schema) IsEmpty() bool { return len(s.names) == 0 }

// Names returns field names in render order.
func (s Schema) Names() []string {
	if len(s.names) == 0 {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Get returns the named field.
func (s Schema) Get(name string) (Field, bool) {
	field, ok := s.fields[name]
	return field, ok
}

// Entries returns the fields in order.
func (s Schema) Entries() []Entry {
	out := make([]Entry, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, Entry{Name: name, Field: s.fields[name]})
	}
	return out
}

// With returns a copy of s with name set to field, appended when new.
func (s Schema) With(name string, field Field) Schema {
	out := s.clone(1)
	if _, exists := out.fields[name]; !exists {
		out.names = append(out.names, name)
	}
	out.fields[name] = field
	return out
}

// Without returns a copy of s with name removed.
func (s Schema) Without(name string) Schema {
	if _, ok := s.fields[name]; !ok {
		return s
	}
	out := Schema{fields: make(map[string]Field, len(s.fields))}
	for _, existing := range s.names {
		if existing == name {
			continue
		}
		out.names = append(out.names, existing)
		out.fields[existing] = s.fields[existing]
	}
	return out
}

// Filter returns the fields for which keep reports true, order preserved.
func (s Schema) Filter(keep func(name string, field Field) bool) Schema {
	out := Schema{}
	for _, name := range s.names {
		if keep(name, s.fields[name]) {
			out = out.With(name, s.fields[name])
		}
	}
	return out
}

// Equal reports whether both schemas hold equal fields in the same order.
// Render handles are compared by identity of their dynamic type only.
func (s Schema) Equal(other Schema) bool {
	if len(s.names) != len(other.names) {
		return false
	}
	for i, name := range s.names {
		if other.names[i] != name {
			return false
		}
		a, b := s.fields[name], other.fields[name]
		if reflect.TypeOf(a.Render) != reflect.TypeOf(b.Render) {
			return false
		}
		a.Render, b.Render = nil, nil
		if !reflect.DeepEqual(normalizeField(a), normalizeField(b)) {
			return false
		}
	}
	return true
}

func normalizeField(f Field) Field {
	if f.ArrayFields.IsEmpty() {
		f.ArrayFields = Schema{}
	}
	if f.ObjectFields.IsEmpty() {
		f.ObjectFields = Schema{}
	}
	return f
}

func (s Schema) clone(extra int) Schema {
	out := Schema{
		names:  make([]string, len(s.names), len(s.names)+extra),
		fields: make(map[string]Field, len(s.fields)+extra),
	}
	copy(out.names, s.names)
	for name, field := range s.fields {
		out.fields[name] = field
	}
	return out
}

type schemaEntryJSON struct {
	Name string `json:"name"`
	Field
}

// MarshalJSON encodes the schema as an ordered array of fields.
func (s Schema) MarshalJSON() ([]byte, error) {
	entries := make([]schemaEntryJSON, 0, len(s.names))
	for _, name := range s.names {
		entries = append(entries, schemaEntryJSON{Name: name, Field: s.fields[name]})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON accepts the ordered array form produced by MarshalJSON.
func (s *Schema) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = Schema{}
		return nil
	}
	var entries []schemaEntryJSON
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return fmt.Errorf("fields: schema must be an array of named fields: %w", err)
	}
	out := Schema{}
	for _, entry := range entries {
		if entry.Name == "" {
			return fmt.Errorf("fields: schema entry missing name")
		}
		out = out.With(entry.Name, entry.Field)
	}
	*s = out
	return nil
}
