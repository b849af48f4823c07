package fields

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-fields/pkg/activity"
	"github.com/goliatone/go-fields/pkg/document"
)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger routes edit events to logger.
func WithDispatcherLogger(logger EngineLogger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = loggerOrNoop(logger)
	}
}

// WithDispatcherActivity emits a fields.changed event for every edit.
func WithDispatcherActivity(emitter *activity.Emitter, documentID string) DispatcherOption {
	return func(d *Dispatcher) {
		d.emitter = emitter
		d.documentID = documentID
	}
}

// Dispatcher turns field edits into document mutations.
type Dispatcher struct {
	logger     EngineLogger
	emitter    *activity.Emitter
	documentID string
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{logger: noopEngineLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// OnFieldChange sets field name of the current entity to value and commits
// the result together with uiPatch.
//
// Entity types with DelegatedCommit hand the candidate state to
// Host.ResolveData and dispatch nothing themselves. All others dispatch
// exactly one SetAction that records history.
func (d *Dispatcher) OnFieldChange(ctx context.Context, ec EditorContext, name string, value any, uiPatch *document.UIState) error {
	if name == "" {
		return ErrEmptyFieldName
	}
	if ec.Host == nil {
		return ErrNoHost
	}

	start := time.Now()
	candidate, entity, desc, err := buildCandidate(ec, name, value, uiPatch)
	if err != nil {
		d.logger.LogEngineEvent(EngineLogEvent{Kind: EventEditFailed, EntityID: entity.ID, EntityType: entity.Type, Field: name, Err: err})
		return err
	}

	delegated := desc.CommitMode == DelegatedCommit
	if delegated {
		err = ec.Host.ResolveData(ctx, candidate)
	} else {
		err = ec.Host.Dispatch(ctx, document.SetAction{State: candidate, RecordHistory: true})
	}
	if err != nil {
		err = fmt.Errorf("fields: commit %q on %q: %w", name, entity.ID, err)
		d.logger.LogEngineEvent(EngineLogEvent{Kind: EventEditFailed, EntityID: entity.ID, EntityType: entity.Type, Field: name, Duration: time.Since(start), Err: err})
		return err
	}

	kind := EventEditCommitted
	if delegated {
		kind = EventEditDelegated
	}
	d.logger.LogEngineEvent(EngineLogEvent{Kind: kind, EntityID: entity.ID, EntityType: entity.Type, Field: name, Duration: time.Since(start)})
	d.emitChanged(ctx, entity, name, value, delegated)
	return nil
}

// BuildCandidate returns the state an edit would commit without committing it.
func BuildCandidate(ec EditorContext, name string, value any, uiPatch *document.UIState) (document.AppState, error) {
	state, _, _, err := buildCandidate(ec, name, value, uiPatch)
	return state, err
}

func buildCandidate(ec EditorContext, name string, value any, uiPatch *document.UIState) (document.AppState, Entity, TypeDescriptor, error) {
	entity, nested := CurrentEntity(ec)
	desc := ec.descriptor(nested, entity)
	merged := copyProps(entity.Props)
	merged[name] = value

	candidate := ec.State
	candidate.UI = document.MergeUI(ec.State.UI, uiPatch)

	if nested {
		item, _ := SelectedItem(ec)
		item.Props = merged
		data, err := document.Replace(ec.State.Data, document.ReplaceAction{
			DestinationZone:  ec.Selection.ZoneOrRoot(),
			DestinationIndex: ec.Selection.Index,
			Data:             item,
		})
		if err != nil {
			return document.AppState{}, entity, desc, fmt.Errorf("fields: replace %q: %w", entity.ID, err)
		}
		candidate.Data = data
		return candidate, entity, desc, nil
	}

	candidate.Data.Root = document.RootData{
		Props:    merged,
		ReadOnly: ec.State.Data.Root.ReadOnly,
	}
	return candidate, entity, desc, nil
}

func (d *Dispatcher) emitChanged(ctx context.Context, entity Entity, name string, value any, delegated bool) {
	if !d.emitter.Enabled() {
		return
	}
	event := activity.BuildFieldChangedEvent(activity.FieldsEventInput{
		DocumentID: d.documentID,
		EntityID:   entity.ID,
		EntityType: entity.Type,
		Field:      name,
		OldValue:   entity.Props[name],
		NewValue:   value,
		Delegated:  delegated,
	})
	if err := d.emitter.Emit(ctx, event); err != nil {
		d.logger.LogEngineEvent(EngineLogEvent{Kind: EventActivityFailed, EntityID: entity.ID, EntityType: entity.Type, Field: name, Err: err})
	}
}
