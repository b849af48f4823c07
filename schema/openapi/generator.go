// Package openapi renders field schemas as OpenAPI 3 object schemas so
// document props can be validated or documented outside the editor.
package openapi

import (
	"fmt"

	fields "github.com/goliatone/go-fields"
)

// Generator builds OpenAPI documents from editor configuration.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs a Generator.
func NewGenerator(opts ...GeneratorOption) Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return Generator{config: cfg}
}

// Generate returns the object schema describing the props of schema. Field
// order is kept in the x-order extension because JSON objects are unordered.
func Generate(schema fields.Schema) map[string]any {
	properties := make(map[string]any, schema.Len())
	order := make([]any, 0, schema.Len())
	for _, entry := range schema.Entries() {
		if entry.Field.Type == "" {
			continue
		}
		properties[entry.Name] = fieldSchema(entry.Field)
		order = append(order, entry.Name)
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"x-order":    order,
	}
}

func fieldSchema(field fields.Field) map[string]any {
	var out map[string]any
	switch field.Type {
	case "text", "textarea", "richtext":
		out = map[string]any{"type": "string"}
	case "number":
		out = map[string]any{"type": "number"}
	case "select", "radio":
		out = enumSchema(field.Options)
	case "array":
		out = map[string]any{"type": "array", "items": Generate(field.ArrayFields)}
	case "object":
		out = Generate(field.ObjectFields)
	default:
		out = map[string]any{}
	}
	out["x-field-type"] = field.Type
	if field.Label != "" {
		out["title"] = field.Label
	}
	if len(field.Metadata) > 0 {
		out["x-metadata"] = field.Metadata
	}
	return out
}

func enumSchema(options []fields.FieldOption) map[string]any {
	values := make([]any, 0, len(options))
	kinds := map[string]struct{}{}
	for _, option := range options {
		values = append(values, option.Value)
		kinds[jsonType(option.Value)] = struct{}{}
	}
	out := map[string]any{"enum": values}
	if len(kinds) == 1 {
		for kind := range kinds {
			if kind != "" {
				out["type"] = kind
			}
		}
	}
	return out
}

func jsonType(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "number"
	case nil:
		return ""
	default:
		return fmt.Sprintf("go:%T", value)
	}
}
