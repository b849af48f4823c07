package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrETagMismatch is returned when a mutation was based on a stale snapshot.
	ErrETagMismatch = errors.New("store: etag mismatch")
	// ErrNotFound is returned when a Ref has no stored snapshot.
	ErrNotFound = errors.New("store: document not found")
	// ErrStaleState is returned when a session changed while data-resolution
	// hooks ran on an older state.
	ErrStaleState = errors.New("store: session state changed during data resolution")
)

// Ref identifies one persisted document.
type Ref struct {
	TenantID   string
	DocumentID string
}

// Identifier returns the storage key of r.
func (r Ref) Identifier() (string, error) {
	if r.DocumentID == "" {
		return "", fmt.Errorf("store: document id is required")
	}
	if r.TenantID == "" {
		return "documents/" + r.DocumentID, nil
	}
	return fmt.Sprintf("tenant/%s/documents/%s", r.TenantID, r.DocumentID), nil
}

// Meta is storage-owned metadata used for auditing and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one snapshot per Ref.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
