package fields

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/goliatone/go-fields/internal/hydrate"
)

type entityConfigJSON struct {
	Fields      Schema          `json:"fields"`
	Rules       []FieldRule     `json:"rules,omitempty"`
	Permissions map[string]bool `json:"permissions,omitempty"`
}

type configJSON struct {
	Root       *entityConfigJSON           `json:"root,omitempty"`
	Components map[string]entityConfigJSON `json:"components,omitempty"`
}

// ConfigOption configures DecodeConfig.
type ConfigOption func(*configDecoder)

type configDecoder struct {
	source       string
	evaluator    Evaluator
	ruleOpts     []RuleSetOption
	dataResolver map[string]ResolveDataFunc
}

// WithConfigSource names the payload in error messages.
func WithConfigSource(source string) ConfigOption {
	return func(d *configDecoder) {
		d.source = source
	}
}

// WithConfigEvaluator compiles "rules" entries with evaluator instead of expr.
func WithConfigEvaluator(evaluator Evaluator) ConfigOption {
	return func(d *configDecoder) {
		d.evaluator = evaluator
	}
}

// WithConfigRuleOptions applies opts to every decoded RuleSet.
func WithConfigRuleOptions(opts ...RuleSetOption) ConfigOption {
	return func(d *configDecoder) {
		d.ruleOpts = append(d.ruleOpts, opts...)
	}
}

// WithDataResolver attaches a data-resolution hook to typ. An empty typ
// targets the root.
func WithDataResolver(typ string, fn ResolveDataFunc) ConfigOption {
	return func(d *configDecoder) {
		if d.dataResolver == nil {
			d.dataResolver = make(map[string]ResolveDataFunc)
		}
		d.dataResolver[typ] = fn
	}
}

// DecodeConfig builds a Config from a JSON-shaped payload:
//
//	{
//	  "root": {"fields": [{"name": "title", "type": "text"}]},
//	  "components": {
//	    "Hero": {
//	      "fields": [{"name": "title", "type": "text"}, {"name": "cta", "type": "text"}],
//	      "rules": [{"name": "cta", "when": "showCta == true"}],
//	      "permissions": {"*": true, "title": false}
//	    }
//	  }
//	}
//
// Fields keep their array order. An entity with rules gets a RuleSet as its
// ResolveFields hook.
func DecodeConfig(payload map[string]any, opts ...ConfigOption) (Config, error) {
	d := &configDecoder{source: "config"}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	decoder := hydrate.NewDecoder[configJSON](
		hydrate.WithDisallowUnknownFields[configJSON](),
		hydrate.WithPostHook[configJSON](validateConfigJSON),
	)
	raw, err := decoder.Decode(hydrate.Context{Source: d.source, DocumentID: "fields"}, payload)
	if err != nil {
		return Config{}, fmt.Errorf("fields: decode config: %w", err)
	}

	cfg := Config{Components: make(map[string]ComponentConfig, len(raw.Components))}
	if raw.Root != nil || d.dataResolver[""] != nil {
		root := &RootConfig{ResolveData: d.dataResolver[""]}
		if raw.Root != nil {
			root.Fields = raw.Root.Fields
			if root.ResolveFields, err = d.rules(raw.Root.Rules); err != nil {
				return Config{}, fmt.Errorf("fields: root rules: %w", err)
			}
		}
		cfg.Root = root
	}
	for name, entity := range raw.Components {
		component := ComponentConfig{
			Fields:      entity.Fields,
			ResolveData: d.dataResolver[name],
			Permissions: entity.Permissions,
		}
		if component.ResolveFields, err = d.rules(entity.Rules); err != nil {
			return Config{}, fmt.Errorf("fields: %q rules: %w", name, err)
		}
		cfg.Components[name] = component
	}
	return cfg, nil
}

// DecodeConfigJSON is DecodeConfig for raw JSON.
func DecodeConfigJSON(raw []byte, opts ...ConfigOption) (Config, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Config{}, fmt.Errorf("fields: unmarshal config: %w", err)
	}
	return DecodeConfig(payload, opts...)
}

// DecodeConfigYAML is DecodeConfig for a YAML document of the same shape.
func DecodeConfigYAML(raw []byte, opts ...ConfigOption) (Config, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return Config{}, fmt.Errorf("fields: unmarshal yaml config: %w", err)
	}
	return DecodeConfig(payload, opts...)
}

func (d *configDecoder) rules(rules []FieldRule) (ResolveFieldsFunc, error) {
	if len(rules) == 0 {
		return nil, nil
	}
	rs, err := NewRuleSet(d.evaluator, rules, d.ruleOpts...)
	if err != nil {
		return nil, err
	}
	return rs.ResolveFields, nil
}

func validateConfigJSON(_ hydrate.Context, cfg *configJSON) error {
	for name := range cfg.Components {
		if name == "" {
			return fmt.Errorf("component type name must not be empty")
		}
	}
	return nil
}
