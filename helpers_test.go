package fields

import (
	"context"
	"sync"
	"testing"

	"github.com/goliatone/go-fields/pkg/document"
)

type recordingHost struct {
	mu         sync.Mutex
	state      document.AppState
	actions    []document.Action
	delegated  []document.AppState
	dispatchFn func(document.Action) error
	resolveFn  func(document.AppState) error
}

func (h *recordingHost) Dispatch(_ context.Context, action document.Action) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, action)
	if h.dispatchFn != nil {
		if err := h.dispatchFn(action); err != nil {
			return err
		}
	}
	next, err := document.Reduce(h.state, action)
	if err != nil {
		return err
	}
	h.state = next
	return nil
}

func (h *recordingHost) ResolveData(_ context.Context, next document.AppState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delegated = append(h.delegated, next)
	if h.resolveFn != nil {
		return h.resolveFn(next)
	}
	return nil
}

func (h *recordingHost) Actions() []document.Action {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]document.Action(nil), h.actions...)
}

func (h *recordingHost) State() document.AppState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func textSchema(names ...string) Schema {
	s := Schema{}
	for _, name := range names {
		s = s.With(name, Field{Type: "text"})
	}
	return s
}

func sampleState() document.AppState {
	return document.AppState{
		Data: document.Data{
			Root: document.RootData{Props: map[string]any{"title": "A"}},
			Content: []document.ComponentData{
				{Type: "Text", Props: map[string]any{"id": "c1", "text": "x", "align": "left"}},
				{Type: "Hero", Props: map[string]any{"id": "h1", "title": "Hi", "showCta": false}},
			},
		},
	}
}

func mustRegistry(t *testing.T, cfg Config) *Registry {
	t.Helper()
	registry, err := LoadConfig(cfg)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return registry
}

// editorFor builds a context whose host tracks state. A negative index
// selects nothing.
func editorFor(t *testing.T, cfg Config, index int) (EditorContext, *recordingHost) {
	t.Helper()
	state := sampleState()
	host := &recordingHost{state: state}
	ec := EditorContext{State: state, Registry: mustRegistry(t, cfg), Host: host}
	if index >= 0 {
		ec.Selection = &document.ItemSelector{Zone: document.RootZone, Index: index}
	}
	return ec, host
}
