package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-fields/pkg/document"
)

// Mutator edits document data in place.
type Mutator func(*document.Data) error

// Documents loads and saves document data through a Store.
type Documents struct {
	Store Store[document.Data]
}

// Load returns the stored document for ref.
func (d Documents) Load(ctx context.Context, ref Ref) (document.Data, Meta, error) {
	if d.Store == nil {
		return document.Data{}, Meta{}, fmt.Errorf("store: store is required")
	}
	data, meta, ok, err := d.Store.Load(ctx, ref)
	if err != nil {
		return document.Data{}, Meta{}, fmt.Errorf("store: load %q: %w", ref.DocumentID, err)
	}
	if !ok {
		return document.Data{}, Meta{}, fmt.Errorf("%w: %q", ErrNotFound, ref.DocumentID)
	}
	return data, meta, nil
}

// Open loads ref into a new Session.
func (d Documents) Open(ctx context.Context, ref Ref, opts ...SessionOption) (*Session, Meta, error) {
	data, meta, err := d.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, err
	}
	return NewSession(document.AppState{Data: data}, opts...), meta, nil
}

// Mutate loads ref, applies fn, validates the result and saves it. A non-empty
// meta.ETag must match the stored ETag. A missing document starts empty.
func (d Documents) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (document.Data, Meta, error) {
	if d.Store == nil {
		return document.Data{}, Meta{}, fmt.Errorf("store: store is required")
	}
	if fn == nil {
		return document.Data{}, Meta{}, fmt.Errorf("store: mutator is required")
	}

	data, loadedMeta, ok, err := d.Store.Load(ctx, ref)
	if err != nil {
		return document.Data{}, Meta{}, fmt.Errorf("store: load %q: %w", ref.DocumentID, err)
	}
	if !ok {
		data = document.Data{Root: document.RootData{Props: map[string]any{}}}
		loadedMeta = Meta{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return document.Data{}, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(&data); err != nil {
		return document.Data{}, loadedMeta, err
	}
	validated, err := validate(ref, data)
	if err != nil {
		return document.Data{}, loadedMeta, err
	}

	saved, err := d.Store.Save(ctx, ref, validated, mergeMeta(loadedMeta, meta))
	if err != nil {
		return document.Data{}, loadedMeta, fmt.Errorf("store: save %q: %w", ref.DocumentID, err)
	}
	return validated, saved, nil
}

// Commit saves the current data of session over ref.
func (d Documents) Commit(ctx context.Context, ref Ref, meta Meta, session *Session) (Meta, error) {
	if session == nil {
		return Meta{}, fmt.Errorf("store: session is required")
	}
	current := session.State().Data
	_, saved, err := d.Mutate(ctx, ref, meta, func(data *document.Data) error {
		*data = current
		return nil
	})
	return saved, err
}

// validate round-trips data through the document decoder so stored
// documents are canonical and free of duplicate ids.
func validate(ref Ref, data document.Data) (document.Data, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return document.Data{}, fmt.Errorf("store: encode %q: %w", ref.DocumentID, err)
	}
	out, err := document.DecodeJSON(ref.DocumentID, raw)
	if err != nil {
		return document.Data{}, fmt.Errorf("store: validate %q: %w", ref.DocumentID, err)
	}
	return out, nil
}
