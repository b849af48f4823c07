package store

import (
	"context"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"

	"github.com/goliatone/go-fields/pkg/document"
)

// Patch applies an RFC 6902 JSON Patch to the stored document.
func (d Documents) Patch(ctx context.Context, ref Ref, meta Meta, patch []byte) (document.Data, Meta, error) {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return document.Data{}, Meta{}, fmt.Errorf("store: decode patch: %w", err)
	}
	return d.Mutate(ctx, ref, meta, rewrite(ref, ops.Apply))
}

// MergePatch applies an RFC 7386 JSON Merge Patch to the stored document.
func (d Documents) MergePatch(ctx context.Context, ref Ref, meta Meta, patch []byte) (document.Data, Meta, error) {
	return d.Mutate(ctx, ref, meta, rewrite(ref, func(doc []byte) ([]byte, error) {
		return jsonpatch.MergePatch(doc, patch)
	}))
}

// Diff returns the merge patch turning before into after.
func Diff(before, after document.Data) ([]byte, error) {
	original, err := json.Marshal(before)
	if err != nil {
		return nil, fmt.Errorf("store: encode original: %w", err)
	}
	modified, err := json.Marshal(after)
	if err != nil {
		return nil, fmt.Errorf("store: encode modified: %w", err)
	}
	patch, err := jsonpatch.CreateMergePatch(original, modified)
	if err != nil {
		return nil, fmt.Errorf("store: diff: %w", err)
	}
	return patch, nil
}

func rewrite(ref Ref, apply func([]byte) ([]byte, error)) Mutator {
	return func(data *document.Data) error {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("store: encode %q: %w", ref.DocumentID, err)
		}
		patched, err := apply(raw)
		if err != nil {
			return fmt.Errorf("store: apply patch to %q: %w", ref.DocumentID, err)
		}
		out, err := document.DecodeJSON(ref.DocumentID, patched)
		if err != nil {
			return fmt.Errorf("store: decode patched %q: %w", ref.DocumentID, err)
		}
		*data = out
		return nil
	}
}
