package fields

import (
	"context"
	"sync"

	"github.com/goliatone/go-fields/pkg/document"
)

// FieldBinding is everything an external renderer needs to draw one field.
type FieldBinding struct {
	ID       string
	Name     string
	Field    Field
	Value    any
	ReadOnly bool
	OnChange func(ctx context.Context, value any, uiPatch *document.UIState) error
}

// Panel exposes the resolved fields of the current entity as a list of
// triggers and tracks which one is open. The open/closed state lives only in
// memory and never touches document data.
type Panel struct {
	Engine     *Engine
	Dispatcher *Dispatcher
	Gate       Gate

	mu      sync.Mutex
	open    bool
	current string
}

// NewPanel wires a panel to engine and dispatcher.
func NewPanel(engine *Engine, dispatcher *Dispatcher) *Panel {
	if engine == nil {
		engine = NewEngine()
	}
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}
	return &Panel{Engine: engine, Dispatcher: dispatcher}
}

// Triggers returns the names of renderable fields in order. Fields without a
// type are skipped.
func (p *Panel) Triggers(ec EditorContext) []string {
	schema := p.Engine.Fields(ec)
	names := make([]string, 0, schema.Len())
	for _, entry := range schema.Entries() {
		if entry.Field.Type == "" {
			continue
		}
		names = append(names, entry.Name)
	}
	return names
}

// Open shows the field called name.
func (p *Panel) Open(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.current = name
}

// Close hides the open field. The last field name is kept.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
}

// Current returns the open field name.
func (p *Panel) Current() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.open && p.current != ""
}

// Loading reports whether fields are resolving or the host reports the
// current entity as loading.
func (p *Panel) Loading(ec EditorContext) bool {
	if p.Engine.Loading() {
		return true
	}
	entity, _ := CurrentEntity(ec)
	return ec.componentLoading(entity)
}

// Binding returns the binding of the open field. ok is false when no field is
// open or the open field is not part of the current schema.
func (p *Panel) Binding(ctx context.Context, ec EditorContext) (binding FieldBinding, ok bool, err error) {
	name, open := p.Current()
	if !open {
		return FieldBinding{}, false, nil
	}
	field, exists := p.Engine.Fields(ec).Get(name)
	if !exists || field.Type == "" {
		return FieldBinding{}, false, nil
	}

	readOnly, err := p.Gate.ReadOnly(ctx, ec, name)
	if err != nil {
		return FieldBinding{}, false, err
	}

	entity, nested := CurrentEntity(ec)
	id := "root_" + name
	if nested {
		id = entity.ID + "_" + name
	}
	dispatcher := p.Dispatcher
	return FieldBinding{
		ID:       id,
		Name:     name,
		Field:    field,
		Value:    entity.Props[name],
		ReadOnly: readOnly,
		OnChange: func(ctx context.Context, value any, uiPatch *document.UIState) error {
			return dispatcher.OnFieldChange(ctx, ec, name, value, uiPatch)
		},
	}, true, nil
}
