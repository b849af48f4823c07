package openapi

import "strings"

type generatorConfig struct {
	version     string
	title       string
	apiVersion  string
	description string
	path        string
	method      string
	operationID string
	summary     string
	contentType string
	responses   map[string]string
	types       map[string]bool
	skipRoot    bool
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		version:     "3.0.3",
		title:       "Editor Fields",
		apiVersion:  "1.0.0",
		path:        "/documents/{documentId}/entities/{entityId}/props",
		method:      "patch",
		operationID: "updateEntityProps",
		contentType: "application/json",
		responses:   map[string]string{"204": "Props updated"},
	}
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the document version string.
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version != "" {
			cfg.version = version
		}
	}
}

// WithTitle sets info.title and info.version. Empty values keep the defaults.
func WithTitle(title, version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.title = title
		}
		if version != "" {
			cfg.apiVersion = version
		}
	}
}

// WithDescription sets info.description.
func WithDescription(description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.description = description
	}
}

// WithEndpoint sets the props update operation. Empty values keep the
// defaults.
func WithEndpoint(path, method, operationID string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if path != "" {
			cfg.path = path
		}
		if method != "" {
			cfg.method = strings.ToLower(method)
		}
		if operationID != "" {
			cfg.operationID = operationID
		}
	}
}

// WithSummary attaches a summary to the props update operation.
func WithSummary(summary string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.summary = strings.TrimSpace(summary)
	}
}

// WithContentType sets the request body media type.
func WithContentType(contentType string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if contentType != "" {
			cfg.contentType = contentType
		}
	}
}

// WithResponse adds or replaces the response documented for status.
func WithResponse(status, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if status != "" {
			cfg.responses[status] = description
		}
	}
}

// WithComponentTypes limits the published component schemas to types.
func WithComponentTypes(types ...string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.types = make(map[string]bool, len(types))
		for _, typ := range types {
			cfg.types[typ] = true
		}
	}
}

// WithoutRoot omits the root schema from Document.
func WithoutRoot() GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.skipRoot = true
	}
}

func (cfg generatorConfig) publishes(typ string) bool {
	return cfg.types == nil || cfg.types[typ]
}
