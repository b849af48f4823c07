package document

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-fields/internal/hydrate"
)

// NormalizeRoot converts a raw root object into RootData. Both the canonical
// {"props": {...}, "readOnly": {...}} form and the legacy flat form, where root
// fields sit directly on the object, are accepted.
func NormalizeRoot(raw map[string]any) RootData {
	if raw == nil {
		return RootData{Props: map[string]any{}}
	}
	readOnly := readOnlyMap(raw["readOnly"])
	if props, ok := raw["props"].(map[string]any); ok {
		return RootData{Props: copyProps(props), ReadOnly: readOnly}
	}
	props := make(map[string]any, len(raw))
	for key, value := range raw {
		if key == "readOnly" || key == "props" {
			continue
		}
		props[key] = value
	}
	return RootData{Props: props, ReadOnly: readOnly}
}

// IsLegacyRoot reports whether raw stores root fields without the props wrapper.
func IsLegacyRoot(raw map[string]any) bool {
	if len(raw) == 0 {
		return false
	}
	_, wrapped := raw["props"].(map[string]any)
	return !wrapped
}

// Decode hydrates a document payload, normalising a legacy flat root and
// rejecting duplicate component ids.
func Decode(documentID string, payload map[string]any) (Data, error) {
	decoder := hydrate.NewDecoder[Data](
		hydrate.WithPreHook[Data](normalizeRootHook),
		hydrate.WithPostHook[Data](checkUniqueIDs),
	)
	data, err := decoder.Decode(hydrate.Context{DocumentID: documentID}, payload)
	if err != nil {
		return Data{}, err
	}
	if data.Root.Props == nil {
		data.Root.Props = map[string]any{}
	}
	return data, nil
}

// DecodeJSON is Decode for a raw JSON document.
func DecodeJSON(documentID string, raw []byte) (Data, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Data{}, fmt.Errorf("document: unmarshal %q: %w", documentID, err)
	}
	return Decode(documentID, payload)
}

func normalizeRootHook(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	raw, ok := payload["root"].(map[string]any)
	if !ok {
		if payload["root"] != nil {
			return nil, fmt.Errorf("document: root must be an object, got %T", payload["root"])
		}
		return payload, nil
	}
	if !IsLegacyRoot(raw) {
		return payload, nil
	}
	root := NormalizeRoot(raw)
	wrapped := map[string]any{"props": root.Props}
	if len(root.ReadOnly) > 0 {
		readOnly := make(map[string]any, len(root.ReadOnly))
		for key, value := range root.ReadOnly {
			readOnly[key] = value
		}
		wrapped["readOnly"] = readOnly
	}
	payload["root"] = wrapped
	return payload, nil
}

func checkUniqueIDs(ctx hydrate.Context, data *Data) error {
	seen := map[string]string{}
	var dup error
	Walk(*data, func(zone string, _ int, item ComponentData) bool {
		id := item.ID()
		if id == "" {
			return true
		}
		if other, ok := seen[id]; ok {
			dup = fmt.Errorf("%w: %q in %q and %q of document %q", ErrDuplicateID, id, other, zone, ctx.DocumentID)
			return false
		}
		seen[id] = zone
		return true
	})
	return dup
}

func readOnlyMap(value any) map[string]bool {
	switch typed := value.(type) {
	case map[string]bool:
		out := make(map[string]bool, len(typed))
		for key, flag := range typed {
			out[key] = flag
		}
		return out
	case map[string]any:
		out := make(map[string]bool, len(typed))
		for key, flag := range typed {
			if b, ok := flag.(bool); ok {
				out[key] = b
			}
		}
		return out
	default:
		return nil
	}
}

func copyProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for key, value := range props {
		out[key] = value
	}
	return out
}
