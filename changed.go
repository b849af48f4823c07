package fields

import (
	"reflect"

	"github.com/goliatone/go-fields/pkg/document"
)

// Entity is an immutable snapshot of the root or a component at the time it
// was captured.
type Entity struct {
	ID       string
	Type     string
	Props    map[string]any
	ReadOnly map[string]bool
}

// IsRoot reports whether the snapshot describes the root entity.
func (e Entity) IsRoot() bool { return e.ID == document.RootID && e.Type == "" }

// IsZero reports whether e is the empty snapshot.
func (e Entity) IsZero() bool {
	return e.ID == "" && e.Type == "" && len(e.Props) == 0 && len(e.ReadOnly) == 0
}

func rootEntity(root document.RootData) Entity {
	return Entity{
		ID:       document.RootID,
		Props:    copyProps(root.Props),
		ReadOnly: copyFlags(root.ReadOnly),
	}
}

func componentEntity(item document.ComponentData) Entity {
	return Entity{
		ID:       item.ID(),
		Type:     item.Type,
		Props:    copyProps(item.Props),
		ReadOnly: copyFlags(item.ReadOnly),
	}
}

// GetChanged reports, per prop, whether current differs from last.
//
// Snapshots of different entities are never compared value by value: every
// prop of current is reported as changed. For the same entity a prop is
// changed when its values differ or it is present on only one side.
func GetChanged(current, last Entity) map[string]bool {
	changed := make(map[string]bool, len(current.Props))
	if last.IsZero() || current.ID != last.ID {
		for key := range current.Props {
			changed[key] = true
		}
		return changed
	}
	for key, value := range current.Props {
		previous, ok := last.Props[key]
		changed[key] = !ok || !reflect.DeepEqual(value, previous)
	}
	for key := range last.Props {
		if _, ok := current.Props[key]; !ok {
			changed[key] = true
		}
	}
	return changed
}

func copyProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for key, value := range props {
		out[key] = value
	}
	return out
}

func copyFlags(flags map[string]bool) map[string]bool {
	if len(flags) == 0 {
		return nil
	}
	out := make(map[string]bool, len(flags))
	for key, value := range flags {
		out[key] = value
	}
	return out
}
