package openapi

import (
	"fmt"
	"sort"

	fields "github.com/goliatone/go-fields"
)

// Document renders one OpenAPI document for registry: the root and every
// component type are published under components.schemas and the configured
// operation accepts any of them.
func (g Generator) Document(registry *fields.Registry) (map[string]any, error) {
	components := newComponentRegistry()
	if !g.config.skipRoot {
		root := Generate(registry.Root().Fields)
		root["x-component-type"] = "root"
		root["x-fields-mode"] = registry.Root().FieldsMode.String()
		components.publish("Root", root)
	}
	for _, typ := range registry.Types() {
		if !g.config.publishes(typ) {
			continue
		}
		desc, _ := registry.Component(typ)
		schema := Generate(desc.Fields)
		schema["x-component-type"] = typ
		schema["x-fields-mode"] = desc.FieldsMode.String()
		schema["x-commit-mode"] = desc.CommitMode.String()
		components.publish(typ, schema)
	}

	document := map[string]any{
		"openapi": g.config.version,
		"info":    g.buildInfo(),
		"paths":   g.buildPaths(components.refs()),
		"components": map[string]any{
			"schemas": components.componentsMap(),
		},
	}
	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

func (g Generator) buildInfo() map[string]any {
	info := map[string]any{
		"title":   g.config.title,
		"version": g.config.apiVersion,
	}
	if g.config.description != "" {
		info["description"] = g.config.description
	}
	return info
}

func (g Generator) buildPaths(refs []any) map[string]any {
	method := g.config.method

	schema := map[string]any{"type": "object", "properties": map[string]any{}}
	if len(refs) > 0 {
		schema = map[string]any{"oneOf": refs}
	}

	statuses := make([]string, 0, len(g.config.responses))
	for status := range g.config.responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	responses := make(map[string]any, len(statuses))
	for _, status := range statuses {
		responses[status] = map[string]any{"description": g.config.responses[status]}
	}

	operation := map[string]any{
		"operationId": g.operationID(method),
		"requestBody": map[string]any{
			"required": true,
			"content": map[string]any{
				g.config.contentType: map[string]any{"schema": schema},
			},
		},
		"responses": responses,
	}
	if g.config.summary != "" {
		operation["summary"] = g.config.summary
	}
	return map[string]any{
		g.config.path: map[string]any{method: operation},
	}
}

func (g Generator) operationID(method string) string {
	if g.config.operationID != "" {
		return g.config.operationID
	}
	return fmt.Sprintf("%s:%s", method, g.config.path)
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	if version, _ := document["openapi"].(string); version == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if _, ok := operation["operationId"].(string); !ok {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			if _, ok := operation["responses"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
