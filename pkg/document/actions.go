package document

import (
	"errors"
	"fmt"
)

var (
	// ErrZoneNotFound indicates an action addressed a zone that does not exist.
	ErrZoneNotFound = errors.New("document: zone not found")
	// ErrIndexOutOfRange indicates an action addressed a position outside a zone.
	ErrIndexOutOfRange = errors.New("document: index out of range")
	// ErrDuplicateID indicates a mutation would leave two entries with one id.
	ErrDuplicateID = errors.New("document: duplicate component id")
	// ErrUnknownAction is returned by Reduce for unsupported action values.
	ErrUnknownAction = errors.New("document: unknown action")
)

// ActionType names an action kind.
type ActionType string

const (
	ActionReplace ActionType = "replace"
	ActionSet     ActionType = "set"
	// ActionSetData is the deprecated flat-root replacement.
	ActionSetData ActionType = "setData"
)

// Action is a replayable document mutation.
type Action interface {
	Type() ActionType
}

// ReplaceAction swaps the entry at DestinationZone/DestinationIndex for Data.
type ReplaceAction struct {
	DestinationZone  string
	DestinationIndex int
	Data             ComponentData
}

func (ReplaceAction) Type() ActionType { return ActionReplace }

// SetAction replaces the full application state in one step.
type SetAction struct {
	State         AppState
	RecordHistory bool
}

func (SetAction) Type() ActionType { return ActionSet }

// SetDataAction replaces the root with flat props.
//
// Deprecated: dispatch a SetAction carrying RootData.Props instead.
type SetDataAction struct {
	Root map[string]any
}

func (SetDataAction) Type() ActionType { return ActionSetData }

// Replace applies action to data without modifying data. Only the destination
// zone is copied; other zones are shared with the input.
func Replace(data Data, action ReplaceAction) (Data, error) {
	zone := action.DestinationZone
	if zone == "" {
		zone = RootZone
	}
	items, ok := ZoneItems(data, zone)
	if !ok {
		return Data{}, fmt.Errorf("%w: %q", ErrZoneNotFound, zone)
	}
	if action.DestinationIndex < 0 || action.DestinationIndex >= len(items) {
		return Data{}, fmt.Errorf("%w: %d in zone %q (len %d)", ErrIndexOutOfRange, action.DestinationIndex, zone, len(items))
	}

	if id := action.Data.ID(); id != "" && id != items[action.DestinationIndex].ID() {
		if _, at, exists := FindByID(data, id); exists {
			return Data{}, fmt.Errorf("%w: %q already at %s[%d]", ErrDuplicateID, id, at.Zone, at.Index)
		}
	}

	next := make([]ComponentData, len(items))
	copy(next, items)
	next[action.DestinationIndex] = action.Data

	out := data
	if zone == RootZone {
		out.Content = next
		return out, nil
	}
	out.Zones = make(map[string][]ComponentData, len(data.Zones))
	for key, value := range data.Zones {
		out.Zones[key] = value
	}
	out.Zones[zone] = next
	return out, nil
}

// Reduce applies action to state and returns the resulting state.
func Reduce(state AppState, action Action) (AppState, error) {
	switch typed := action.(type) {
	case ReplaceAction:
		data, err := Replace(state.Data, typed)
		if err != nil {
			return AppState{}, err
		}
		state.Data = data
		return state, nil
	case *ReplaceAction:
		if typed == nil {
			return AppState{}, fmt.Errorf("%w: nil replace", ErrUnknownAction)
		}
		return Reduce(state, *typed)
	case SetAction:
		return typed.State, nil
	case *SetAction:
		if typed == nil {
			return AppState{}, fmt.Errorf("%w: nil set", ErrUnknownAction)
		}
		return typed.State, nil
	case SetDataAction:
		state.Data.Root = NormalizeRoot(typed.Root)
		return state, nil
	case *SetDataAction:
		if typed == nil {
			return AppState{}, fmt.Errorf("%w: nil setData", ErrUnknownAction)
		}
		return Reduce(state, *typed)
	case nil:
		return AppState{}, fmt.Errorf("%w: nil", ErrUnknownAction)
	default:
		return AppState{}, fmt.Errorf("%w: %s", ErrUnknownAction, action.Type())
	}
}

// RecordsHistory reports whether committing action should append an undo entry.
func RecordsHistory(action Action) bool {
	switch typed := action.(type) {
	case SetAction:
		return typed.RecordHistory
	case *SetAction:
		return typed != nil && typed.RecordHistory
	default:
		return false
	}
}
