package fields

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-fields/pkg/activity"
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger routes resolution events to logger.
func WithEngineLogger(logger EngineLogger) EngineOption {
	return func(e *Engine) {
		e.logger = loggerOrNoop(logger)
	}
}

// WithEngineActivity emits a fields.resolved event for every committed
// resolution.
func WithEngineActivity(emitter *activity.Emitter) EngineOption {
	return func(e *Engine) {
		e.emitter = emitter
	}
}

// Engine resolves the field schema for the current entity.
//
// Every Trigger takes a sequence number; only the most recently issued
// sequence may commit its result, so a slow hook that finishes after a newer
// trigger is discarded instead of overwriting the newer schema.
type Engine struct {
	seq atomic.Uint64

	mu           sync.Mutex
	snapshot     Entity
	committed    Schema
	hasCommitted bool
	loading      bool

	logger  EngineLogger
	emitter *activity.Emitter
}

// NewEngine constructs an idle Engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: noopEngineLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Trigger starts a resolution for the current entity of ec and commits the
// result when no newer trigger was issued meanwhile. committed reports
// whether schema became the engine's schema. On error the loading flag stays
// set until a later trigger commits.
func (e *Engine) Trigger(ctx context.Context, ec EditorContext) (schema Schema, committed bool, err error) {
	entity, nested := CurrentEntity(ec)
	desc := ec.descriptor(nested, entity)

	e.mu.Lock()
	seq := e.seq.Add(1)
	e.loading = true
	in := e.advance(entity, desc)
	e.mu.Unlock()

	e.logger.LogEngineEvent(EngineLogEvent{Kind: EventResolveStarted, EntityID: entity.ID, EntityType: entity.Type, Seq: seq})

	start := time.Now()
	schema, err = e.resolve(ctx, ec, entity, desc, desc.Fields, in, seq)
	duration := time.Since(start)
	if err != nil {
		e.logger.LogEngineEvent(EngineLogEvent{Kind: EventResolveFailed, EntityID: entity.ID, EntityType: entity.Type, Seq: seq, Duration: duration, Err: err})
		return Schema{}, false, err
	}

	e.mu.Lock()
	if seq != e.seq.Load() {
		e.mu.Unlock()
		e.logger.LogEngineEvent(EngineLogEvent{Kind: EventResolveDiscarded, EntityID: entity.ID, EntityType: entity.Type, Seq: seq, Fields: schema.Len(), Duration: duration})
		return schema, false, nil
	}
	e.committed = schema
	e.hasCommitted = true
	e.loading = false
	e.mu.Unlock()

	e.logger.LogEngineEvent(EngineLogEvent{Kind: EventResolveCommitted, EntityID: entity.ID, EntityType: entity.Type, Seq: seq, Fields: schema.Len(), Duration: duration})
	e.emitResolved(ctx, entity, schema, seq)
	return schema, true, nil
}

// Resolve computes the schema for the current entity of ec without
// committing it. requested is passed to the hook as the requested fields.
func (e *Engine) Resolve(ctx context.Context, ec EditorContext, requested Schema) (Schema, error) {
	entity, nested := CurrentEntity(ec)
	desc := ec.descriptor(nested, entity)

	e.mu.Lock()
	seq := e.seq.Load()
	in := e.advance(entity, desc)
	e.mu.Unlock()

	return e.resolve(ctx, ec, entity, desc, requested, in, seq)
}

// resolveInput is the diff baseline captured when a resolution starts.
type resolveInput struct {
	last       Entity
	changed    map[string]bool
	lastFields Schema
}

// advance diffs entity against the snapshot and moves the snapshot to
// entity. Callers hold e.mu.
func (e *Engine) advance(entity Entity, desc TypeDescriptor) resolveInput {
	last := e.snapshot
	if last.ID != entity.ID {
		last = Entity{}
	}
	in := resolveInput{
		last:       last,
		changed:    GetChanged(entity, last),
		lastFields: e.committed,
	}
	if !e.hasCommitted {
		in.lastFields = desc.Fields
	}
	e.snapshot = entity
	return in
}

func (e *Engine) resolve(ctx context.Context, ec EditorContext, entity Entity, desc TypeDescriptor, requested Schema, in resolveInput, seq uint64) (Schema, error) {
	if desc.FieldsMode != ResolvableFields {
		return desc.Fields, nil
	}
	schema, err := desc.ResolveFields(ctx, entity, ResolveParams{
		Changed:    in.changed,
		Fields:     requested,
		LastFields: in.lastFields,
		LastData:   in.last,
		AppState:   ec.State,
	})
	if err != nil {
		return Schema{}, &ResolveError{EntityID: entity.ID, EntityType: entity.Type, Seq: seq, Err: err}
	}
	return schema, nil
}

// Fields returns the committed schema, or the static default for the current
// entity of ec before anything was committed.
func (e *Engine) Fields(ec EditorContext) Schema {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasCommitted {
		return e.committed
	}
	entity, nested := CurrentEntity(ec)
	return ec.descriptor(nested, entity).Fields
}

// Loading reports whether a triggered resolution has not committed yet.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Snapshot returns the entity the last resolution diffed against.
func (e *Engine) Snapshot() Entity {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// Seq returns the most recently issued sequence number.
func (e *Engine) Seq() uint64 {
	return e.seq.Load()
}

func (e *Engine) emitResolved(ctx context.Context, entity Entity, schema Schema, seq uint64) {
	if !e.emitter.Enabled() {
		return
	}
	event := activity.BuildFieldsResolvedEvent(activity.FieldsEventInput{
		EntityID:   entity.ID,
		EntityType: entity.Type,
		Fields:     schema.Names(),
		Seq:        seq,
	})
	if err := e.emitter.Emit(ctx, event); err != nil {
		e.logger.LogEngineEvent(EngineLogEvent{Kind: EventActivityFailed, EntityID: entity.ID, EntityType: entity.Type, Seq: seq, Err: err})
	}
}
