package fields

import (
	"context"
	"fmt"

	"github.com/goliatone/go-fields/pkg/document"
)

// PermissionEdit is the global permission key consulted for field edits.
const PermissionEdit = "edit"

// PermissionRequest is the input of a PermissionResolver.
type PermissionRequest struct {
	Selection         document.ItemSelector
	Item              document.ComponentData
	Config            Config
	GlobalPermissions map[string]bool
	State             document.AppState
}

// PermissionResolver reports per field whether it may be edited. A "*" entry
// covers every field without its own entry, including fields added by a
// ResolveFields hook. Remaining fields fall back to the global "edit"
// permission.
type PermissionResolver func(ctx context.Context, req PermissionRequest) (map[string]bool, error)

// PermissionWildcard keys the permission applying to every unnamed field.
const PermissionWildcard = "*"

// DefaultPermissionResolver returns the component's configured Permissions.
// Named entries win over the "*" entry.
func DefaultPermissionResolver(_ context.Context, req PermissionRequest) (map[string]bool, error) {
	component, ok := req.Config.Components[req.Item.Type]
	if !ok || len(component.Permissions) == 0 {
		return map[string]bool{}, nil
	}
	out := make(map[string]bool, len(component.Permissions))
	for name, edit := range component.Permissions {
		out[name] = edit
	}
	return out, nil
}

// Gate decides whether fields of the current entity are read-only.
type Gate struct{}

// ReadOnly reports whether field name of the current entity of ec must be
// rendered read-only. Root fields consult only the root readOnly map; nested
// entities additionally consult ec.Permissions.
func (g Gate) ReadOnly(ctx context.Context, ec EditorContext, name string) (bool, error) {
	flags, err := g.Flags(ctx, ec)
	if err != nil {
		return false, err
	}
	return flags.ReadOnly(name), nil
}

// Flags resolves permissions once so several fields can be checked.
func (Gate) Flags(ctx context.Context, ec EditorContext) (FieldFlags, error) {
	item, nested := SelectedItem(ec)
	if !nested {
		return FieldFlags{readOnly: ec.State.Data.Root.ReadOnly, defaultEdit: true}, nil
	}

	flags := FieldFlags{readOnly: item.ReadOnly, defaultEdit: globalEdit(ec.GlobalPermissions)}
	resolver := ec.Permissions
	if resolver == nil {
		resolver = DefaultPermissionResolver
	}
	edit, err := resolver(ctx, PermissionRequest{
		Selection:         *ec.Selection,
		Item:              item,
		Config:            ec.Registry.Config(),
		GlobalPermissions: ec.GlobalPermissions,
		State:             ec.State,
	})
	if err != nil {
		return FieldFlags{}, fmt.Errorf("fields: permissions for %q: %w", item.ID(), err)
	}
	flags.edit = edit
	return flags, nil
}

// FieldFlags is a resolved permission set for one entity.
type FieldFlags struct {
	readOnly    map[string]bool
	edit        map[string]bool
	defaultEdit bool
}

// ReadOnly reports whether name is read-only.
func (f FieldFlags) ReadOnly(name string) bool {
	if f.readOnly[name] {
		return true
	}
	if edit, ok := f.edit[name]; ok {
		return !edit
	}
	if edit, ok := f.edit[PermissionWildcard]; ok {
		return !edit
	}
	return !f.defaultEdit
}

func globalEdit(global map[string]bool) bool {
	if global == nil {
		return true
	}
	edit, ok := global[PermissionEdit]
	return !ok || edit
}
