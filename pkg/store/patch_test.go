package store_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-fields/pkg/document"
	"github.com/goliatone/go-fields/pkg/store"
)

func seededDocuments(t *testing.T) (store.Documents, store.Ref, store.Meta) {
	t.Helper()
	docs := store.Documents{Store: store.NewMemoryStore[document.Data]()}
	ref := store.Ref{DocumentID: "home"}
	_, meta, err := docs.Mutate(context.Background(), ref, store.Meta{}, func(data *document.Data) error {
		*data = initialState().Data
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return docs, ref, meta
}

func TestDocumentsPatch(t *testing.T) {
	docs, ref, meta := seededDocuments(t)

	patch := []byte(`[
		{"op": "replace", "path": "/root/props/title", "value": "B"},
		{"op": "replace", "path": "/content/1/props/text", "value": "y"}
	]`)
	data, saved, err := docs.Patch(context.Background(), ref, meta, patch)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if data.Root.Props["title"] != "B" || data.Content[1].Props["text"] != "y" {
		t.Fatalf("patch not applied: %+v", data)
	}
	if saved.ETag == meta.ETag {
		t.Fatalf("expected a new etag")
	}
}

func TestDocumentsPatchRejectsDuplicateIDs(t *testing.T) {
	docs, ref, meta := seededDocuments(t)

	patch := []byte(`[{"op": "replace", "path": "/content/1/props/id", "value": "h1"}]`)
	if _, _, err := docs.Patch(context.Background(), ref, meta, patch); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	loaded, _, err := docs.Load(context.Background(), ref)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Content[1].ID() != "t1" {
		t.Fatalf("rejected patch must not be saved, got %+v", loaded.Content[1])
	}
}

func TestDocumentsMergePatchNormalizesLegacyRoot(t *testing.T) {
	docs, ref, meta := seededDocuments(t)

	data, _, err := docs.MergePatch(context.Background(), ref, meta, []byte(`{"root": {"props": null, "title": "Flat"}}`))
	if err != nil {
		t.Fatalf("merge patch: %v", err)
	}
	if data.Root.Props["title"] != "Flat" {
		t.Fatalf("expected flat root to be wrapped, got %+v", data.Root)
	}
}

func TestDiff(t *testing.T) {
	before := initialState().Data
	after := document.Clone(before)
	after.Root.Props["title"] = "B"

	patch, err := store.Diff(before, after)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(patch, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{"root": map[string]any{"props": map[string]any{"title": "B"}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected patch (-want +got):\n%s", diff)
	}
}
