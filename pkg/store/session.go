package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	fields "github.com/goliatone/go-fields"
	"github.com/goliatone/go-fields/pkg/document"
)

// HistoryEntry is one undo step: the state before a history-recording action.
type HistoryEntry struct {
	ID     string
	Action document.ActionType
	Before document.AppState
	At     time.Time
}

// Listener observes committed actions. It runs after the session lock is
// released.
type Listener func(state document.AppState, action document.Action)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRegistry supplies the data-resolution hooks used by ResolveData.
func WithRegistry(registry *fields.Registry) SessionOption {
	return func(s *Session) {
		s.registry = registry
	}
}

// WithListener registers listener at construction.
func WithListener(listener Listener) SessionOption {
	return func(s *Session) {
		if listener != nil {
			s.listeners = append(s.listeners, listener)
		}
	}
}

// WithHistoryLimit keeps at most limit undo entries. Zero means unbounded.
func WithHistoryLimit(limit int) SessionOption {
	return func(s *Session) {
		s.historyLimit = limit
	}
}

// WithSessionLogger routes data-resolution events to logger.
func WithSessionLogger(logger fields.EngineLogger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session is an in-memory editor host. Every committed action or undo bumps
// its revision.
type Session struct {
	mu           sync.Mutex
	state        document.AppState
	revision     uint64
	history      []HistoryEntry
	historyLimit int
	listeners    []Listener
	registry     *fields.Registry
	logger       fields.EngineLogger
	now          func() time.Time
}

var _ fields.Host = (*Session)(nil)

// NewSession starts a session at initial.
func NewSession(initial document.AppState, opts ...SessionOption) *Session {
	s := &Session{
		state:  document.Clone(initial),
		logger: fields.EngineLoggerFunc(nil),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.state.Data.Root.Props == nil {
		s.state.Data.Root.Props = map[string]any{}
	}
	return s
}

// State returns a copy of the current state.
func (s *Session) State() document.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return document.Clone(s.state)
}

// History returns the undo entries, oldest first.
func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]HistoryEntry(nil), s.history...)
}

// Subscribe registers listener and returns a function removing it.
func (s *Session) Subscribe(listener Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
	index := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if index < len(s.listeners) {
			s.listeners[index] = nil
		}
	}
}

// Revision returns the number of state changes applied so far.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Dispatch applies action to the session state.
func (s *Session) Dispatch(ctx context.Context, action document.Action) error {
	return s.apply(ctx, action, nil)
}

// apply commits action. A non-nil base must match the current revision.
func (s *Session) apply(ctx context.Context, action document.Action, base *uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if base != nil && *base != s.revision {
		current := s.revision
		s.mu.Unlock()
		return fmt.Errorf("%w: started at revision %d, now %d", ErrStaleState, *base, current)
	}
	next, err := document.Reduce(s.state, action)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("store: dispatch: %w", err)
	}
	if document.RecordsHistory(action) {
		s.history = append(s.history, HistoryEntry{
			ID:     uuid.NewString(),
			Action: action.Type(),
			Before: s.state,
			At:     s.now(),
		})
		if s.historyLimit > 0 && len(s.history) > s.historyLimit {
			s.history = append([]HistoryEntry(nil), s.history[len(s.history)-s.historyLimit:]...)
		}
	}
	s.state = document.Clone(next)
	s.revision++
	listeners := append([]Listener(nil), s.listeners...)
	snapshot := document.Clone(s.state)
	s.mu.Unlock()

	for _, listener := range listeners {
		if listener != nil {
			listener(snapshot, action)
		}
	}
	return nil
}

// Undo restores the state before the most recent history entry. It reports
// false when there is nothing to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return false
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.state = last.Before
	s.revision++
	return true
}

// ResolveData runs the data-resolution hooks of every entity whose props in
// next differ from the current state, then commits the result with exactly
// one history-recording SetAction. Hook errors abort the commit. Hooks run
// without the session lock; if another action commits meanwhile the result is
// dropped and ErrStaleState returned.
func (s *Session) ResolveData(ctx context.Context, next document.AppState) error {
	s.mu.Lock()
	current := document.Clone(s.state)
	base := s.revision
	s.mu.Unlock()
	resolved := document.Clone(next)

	rootDesc := s.registry.Root()
	if rootDesc.ResolveData != nil && !reflect.DeepEqual(current.Data.Root.Props, resolved.Data.Root.Props) {
		entity := fields.Entity{ID: document.RootID, Props: resolved.Data.Root.Props, ReadOnly: resolved.Data.Root.ReadOnly}
		last := fields.Entity{ID: document.RootID, Props: current.Data.Root.Props, ReadOnly: current.Data.Root.ReadOnly}
		props, err := s.runHook(ctx, rootDesc, entity, last, resolved)
		if err != nil {
			return err
		}
		resolved.Data.Root.Props = props
	}

	var hookErr error
	updates := map[document.ItemSelector]document.ComponentData{}
	document.Walk(resolved.Data, func(zone string, index int, item document.ComponentData) bool {
		desc, ok := s.registry.Component(item.Type)
		if !ok || desc.ResolveData == nil {
			return true
		}
		previous, _, found := document.FindByID(current.Data, item.ID())
		if found && reflect.DeepEqual(previous.Props, item.Props) {
			return true
		}
		entity := fields.Entity{ID: item.ID(), Type: item.Type, Props: item.Props, ReadOnly: item.ReadOnly}
		last := fields.Entity{}
		if found {
			last = fields.Entity{ID: previous.ID(), Type: previous.Type, Props: previous.Props, ReadOnly: previous.ReadOnly}
		}
		props, err := s.runHook(ctx, desc, entity, last, resolved)
		if err != nil {
			hookErr = err
			return false
		}
		item.Props = props
		updates[document.ItemSelector{Zone: zone, Index: index}] = item
		return true
	})
	if hookErr != nil {
		return hookErr
	}

	for selector, item := range updates {
		data, err := document.Replace(resolved.Data, document.ReplaceAction{
			DestinationZone:  selector.Zone,
			DestinationIndex: selector.Index,
			Data:             item,
		})
		if err != nil {
			return fmt.Errorf("store: resolve data: %w", err)
		}
		resolved.Data = data
	}

	return s.apply(ctx, document.SetAction{State: resolved, RecordHistory: true}, &base)
}

func (s *Session) runHook(ctx context.Context, desc fields.TypeDescriptor, entity, last fields.Entity, state document.AppState) (map[string]any, error) {
	start := s.now()
	props, err := desc.ResolveData(ctx, entity, fields.ResolveDataParams{
		Changed:  fields.GetChanged(entity, last),
		LastData: last,
		AppState: state,
	})
	event := fields.EngineLogEvent{
		Kind:       fields.EventDataResolved,
		EntityID:   entity.ID,
		EntityType: entity.Type,
		Duration:   s.now().Sub(start),
	}
	if err != nil {
		err = fmt.Errorf("store: resolve data for %q: %w", entity.ID, err)
		event.Kind = fields.EventDataFailed
		event.Err = err
		s.logger.LogEngineEvent(event)
		return nil, err
	}
	s.logger.LogEngineEvent(event)
	if props == nil {
		props = map[string]any{}
	}
	return props, nil
}
