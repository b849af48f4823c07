package fields

import (
	"context"

	"github.com/goliatone/go-fields/pkg/document"
)

// Host is the editor state owner. Dispatch commits an action; ResolveData
// hands a candidate state to the host's data-resolution pipeline, which is
// expected to commit it (recording history once) when it finishes.
type Host interface {
	Dispatch(ctx context.Context, action document.Action) error
	ResolveData(ctx context.Context, next document.AppState) error
}

// RootComponentStateKey keys the root entity in EditorContext.ComponentState.
const RootComponentStateKey = "puck-root"

// ComponentStatus is the host-reported status of one entity.
type ComponentStatus struct {
	Loading bool
}

// EditorContext is everything the field components read from the editor. It
// is passed explicitly to every entry point and treated as read-only.
type EditorContext struct {
	// Selection is nil when nothing is selected and the root is edited.
	Selection *document.ItemSelector
	State     document.AppState
	Registry  *Registry
	Host      Host
	// ComponentState is keyed by component id, and by RootComponentStateKey
	// for the root.
	ComponentState    map[string]ComponentStatus
	GlobalPermissions map[string]bool
	Permissions       PermissionResolver
}

// CurrentEntity derives the entity being edited. nested is false when the
// root is current, including when Selection points at nothing.
func CurrentEntity(ec EditorContext) (entity Entity, nested bool) {
	if ec.Selection != nil {
		if item, ok := document.ItemAt(ec.State.Data, *ec.Selection); ok {
			return componentEntity(item), true
		}
	}
	return rootEntity(ec.State.Data.Root), false
}

// SelectedItem returns the selected component entry, if any.
func SelectedItem(ec EditorContext) (document.ComponentData, bool) {
	if ec.Selection == nil {
		return document.ComponentData{}, false
	}
	return document.ItemAt(ec.State.Data, *ec.Selection)
}

func (ec EditorContext) descriptor(nested bool, entity Entity) TypeDescriptor {
	if !nested {
		return ec.Registry.Root()
	}
	d, _ := ec.Registry.Component(entity.Type)
	return d
}

func (ec EditorContext) componentLoading(entity Entity) bool {
	if ec.ComponentState == nil {
		return false
	}
	key := entity.ID
	if entity.IsRoot() {
		key = RootComponentStateKey
	}
	return ec.ComponentState[key].Loading
}
