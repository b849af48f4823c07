package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-fields/pkg/document"
	"github.com/goliatone/go-fields/pkg/store"
)

func TestRefIdentifier(t *testing.T) {
	cases := []struct {
		ref     store.Ref
		want    string
		wantErr bool
	}{
		{ref: store.Ref{DocumentID: "home"}, want: "documents/home"},
		{ref: store.Ref{TenantID: "acme", DocumentID: "home"}, want: "tenant/acme/documents/home"},
		{ref: store.Ref{TenantID: "acme"}, wantErr: true},
	}
	for _, tc := range cases {
		got, err := tc.ref.Identifier()
		if tc.wantErr {
			if err == nil {
				t.Fatalf("expected error for %+v", tc.ref)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("expected %q, got %q err=%v", tc.want, got, err)
		}
	}
}

func TestMemoryStoreIssuesFreshMeta(t *testing.T) {
	s := store.NewMemoryStore[document.Data]()
	ref := store.Ref{DocumentID: "home"}
	ctx := context.Background()

	if _, _, ok, err := s.Load(ctx, ref); ok || err != nil {
		t.Fatalf("expected empty store, ok=%v err=%v", ok, err)
	}
	first, err := s.Save(ctx, ref, initialState().Data, store.Meta{Extra: map[string]string{"by": "test"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := s.Save(ctx, ref, initialState().Data, store.Meta{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.SnapshotID == "" || first.SnapshotID == second.SnapshotID || first.ETag == second.ETag {
		t.Fatalf("expected fresh snapshot ids and etags, got %+v / %+v", first, second)
	}
	if first.Extra["by"] != "test" {
		t.Fatalf("extra metadata lost: %+v", first)
	}

	loaded, meta, ok, err := s.Load(ctx, ref)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if meta.ETag != second.ETag {
		t.Fatalf("expected latest etag")
	}
	loaded.Root.Props["title"] = "mutated"
	again, _, _, _ := s.Load(ctx, ref)
	if again.Root.Props["title"] != "A" {
		t.Fatalf("loaded snapshots must be copies")
	}
}

func TestDocumentsMutate(t *testing.T) {
	docs := store.Documents{Store: store.NewMemoryStore[document.Data]()}
	ref := store.Ref{TenantID: "acme", DocumentID: "home"}
	ctx := context.Background()

	data, meta, err := docs.Mutate(ctx, ref, store.Meta{}, func(d *document.Data) error {
		*d = initialState().Data
		return nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(data.Content) != 2 || meta.ETag == "" {
		t.Fatalf("unexpected create result %+v %+v", data, meta)
	}

	_, next, err := docs.Mutate(ctx, ref, store.Meta{ETag: meta.ETag}, func(d *document.Data) error {
		d.Root.Props["title"] = "B"
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	_, _, err = docs.Mutate(ctx, ref, store.Meta{ETag: meta.ETag}, func(d *document.Data) error {
		d.Root.Props["title"] = "stale"
		return nil
	})
	if !errors.Is(err, store.ErrETagMismatch) {
		t.Fatalf("expected etag mismatch, got %v", err)
	}

	loaded, loadedMeta, err := docs.Load(ctx, ref)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Root.Props["title"] != "B" || loadedMeta.ETag != next.ETag {
		t.Fatalf("unexpected stored document %+v %+v", loaded.Root, loadedMeta)
	}
}

func TestDocumentsMutateRejectsDuplicateIDs(t *testing.T) {
	docs := store.Documents{Store: store.NewMemoryStore[document.Data]()}
	_, _, err := docs.Mutate(context.Background(), store.Ref{DocumentID: "dup"}, store.Meta{}, func(d *document.Data) error {
		d.Content = []document.ComponentData{
			{Type: "Text", Props: map[string]any{"id": "same"}},
			{Type: "Text", Props: map[string]any{"id": "same"}},
		}
		return nil
	})
	if !errors.Is(err, document.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestDocumentsOpenAndCommit(t *testing.T) {
	docs := store.Documents{Store: store.NewMemoryStore[document.Data]()}
	ref := store.Ref{DocumentID: "home"}
	ctx := context.Background()

	if _, _, err := docs.Open(ctx, ref); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, meta, err := docs.Mutate(ctx, ref, store.Meta{}, func(d *document.Data) error {
		*d = initialState().Data
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	session, openedMeta, err := docs.Open(ctx, ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if openedMeta.ETag != meta.ETag {
		t.Fatalf("expected opened etag to match")
	}
	next := session.State()
	next.Data.Root.Props["title"] = "Saved"
	if err := session.Dispatch(ctx, document.SetAction{State: next, RecordHistory: true}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := docs.Commit(ctx, ref, openedMeta, session); err != nil {
		t.Fatalf("commit: %v", err)
	}
	loaded, _, _ := docs.Load(ctx, ref)
	if loaded.Root.Props["title"] != "Saved" {
		t.Fatalf("expected committed title, got %v", loaded.Root.Props["title"])
	}
}
