package fields

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-fields/pkg/document"
)

// ResolveParams is the change context handed to a ResolveFieldsFunc.
type ResolveParams struct {
	Changed    map[string]bool
	Fields     Schema
	LastFields Schema
	LastData   Entity
	AppState   document.AppState
}

// ResolveFieldsFunc computes the field schema for an entity. A zero Schema
// result means "no fields".
type ResolveFieldsFunc func(ctx context.Context, entity Entity, params ResolveParams) (Schema, error)

// ResolveDataParams is the change context handed to a ResolveDataFunc.
type ResolveDataParams struct {
	Changed  map[string]bool
	LastData Entity
	AppState document.AppState
}

// ResolveDataFunc recomputes an entity's props before an edit is committed.
// The returned props replace the entity's props wholesale.
type ResolveDataFunc func(ctx context.Context, entity Entity, params ResolveDataParams) (map[string]any, error)

// ComponentConfig configures one component type.
type ComponentConfig struct {
	Fields        Schema
	ResolveFields ResolveFieldsFunc
	ResolveData   ResolveDataFunc
	// Permissions holds per-field edit flags consulted by
	// DefaultPermissionResolver. The "*" key applies to every field.
	Permissions map[string]bool
}

// RootConfig configures the root entity.
type RootConfig struct {
	Fields        Schema
	ResolveFields ResolveFieldsFunc
	ResolveData   ResolveDataFunc
}

// Config is the editor configuration for every known entity type.
type Config struct {
	Root       *RootConfig
	Components map[string]ComponentConfig
}

// DefaultRootFields is used when the root configures no fields.
var DefaultRootFields = NewSchema(Entry{Name: "title", Field: Field{Type: "text"}})

// FieldsCapability records how an entity type produces its schema.
type FieldsCapability int

const (
	StaticFields FieldsCapability = iota
	ResolvableFields
)

func (c FieldsCapability) String() string {
	switch c {
	case ResolvableFields:
		return "resolvable"
	default:
		return "static"
	}
}

// CommitCapability records how edits to an entity type are committed.
type CommitCapability int

const (
	DirectCommit CommitCapability = iota
	DelegatedCommit
)

func (c CommitCapability) String() string {
	switch c {
	case DelegatedCommit:
		return "delegated"
	default:
		return "direct"
	}
}

// TypeDescriptor is the resolved configuration of one entity type.
type TypeDescriptor struct {
	Name          string
	Fields        Schema
	FieldsMode    FieldsCapability
	CommitMode    CommitCapability
	ResolveFields ResolveFieldsFunc
	ResolveData   ResolveDataFunc
	Permissions   map[string]bool
}

// Registry holds type descriptors resolved once from a Config.
type Registry struct {
	root       TypeDescriptor
	components map[string]TypeDescriptor
	config     Config
}

// LoadConfig resolves capabilities for the root and every component type.
func LoadConfig(cfg Config) (*Registry, error) {
	registry := &Registry{
		components: make(map[string]TypeDescriptor, len(cfg.Components)),
		config:     cfg,
	}

	root := TypeDescriptor{Name: "", Fields: DefaultRootFields}
	if cfg.Root != nil {
		if !cfg.Root.Fields.IsEmpty() {
			root.Fields = cfg.Root.Fields
		}
		root.ResolveFields = cfg.Root.ResolveFields
		root.ResolveData = cfg.Root.ResolveData
	}
	registry.root = describe(root)

	for name, component := range cfg.Components {
		if name == "" {
			return nil, fmt.Errorf("fields: component type name must not be empty")
		}
		registry.components[name] = describe(TypeDescriptor{
			Name:          name,
			Fields:        component.Fields,
			ResolveFields: component.ResolveFields,
			ResolveData:   component.ResolveData,
			Permissions:   copyFlags(component.Permissions),
		})
	}
	return registry, nil
}

func describe(d TypeDescriptor) TypeDescriptor {
	d.FieldsMode = StaticFields
	if d.ResolveFields != nil {
		d.FieldsMode = ResolvableFields
	}
	d.CommitMode = DirectCommit
	if d.ResolveData != nil {
		d.CommitMode = DelegatedCommit
	}
	return d
}

// Root returns the root descriptor.
func (r *Registry) Root() TypeDescriptor {
	if r == nil {
		return describe(TypeDescriptor{Fields: DefaultRootFields})
	}
	return r.root
}

// Component returns the descriptor for typ. Unknown types resolve to a static,
// field-less, directly committed descriptor.
func (r *Registry) Component(typ string) (TypeDescriptor, bool) {
	if r != nil {
		if d, ok := r.components[typ]; ok {
			return d, true
		}
	}
	return describe(TypeDescriptor{Name: typ}), false
}

// Types returns the configured component type names, sorted.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config returns the configuration the registry was loaded from.
func (r *Registry) Config() Config {
	if r == nil {
		return Config{}
	}
	return r.config
}

// Descriptor returns the descriptor governing entity.
func (r *Registry) Descriptor(entity Entity) TypeDescriptor {
	if entity.IsRoot() {
		return r.Root()
	}
	d, _ := r.Component(entity.Type)
	return d
}
