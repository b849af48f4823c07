package document

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleData() Data {
	return Data{
		Root: RootData{Props: map[string]any{"title": "Home"}},
		Content: []ComponentData{
			{Type: "Heading", Props: map[string]any{"id": "h1", "text": "hello"}},
			{Type: "Columns", Props: map[string]any{"id": "cols"}},
		},
		Zones: map[string][]ComponentData{
			"cols:left": {
				{Type: "Text", Props: map[string]any{"id": "t1", "text": "x"}},
			},
		},
	}
}

func TestReplaceRootZoneIsPure(t *testing.T) {
	data := sampleData()
	next, err := Replace(data, ReplaceAction{
		DestinationZone:  RootZone,
		DestinationIndex: 0,
		Data:             ComponentData{Type: "Heading", Props: map[string]any{"id": "h1", "text": "bye"}},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if next.Content[0].Props["text"] != "bye" {
		t.Fatalf("expected replaced entry, got %+v", next.Content[0])
	}
	if data.Content[0].Props["text"] != "hello" {
		t.Fatalf("input mutated: %+v", data.Content[0])
	}
	if len(next.Zones["cols:left"]) != 1 {
		t.Fatalf("expected other zones preserved")
	}
}

func TestReplaceNestedZone(t *testing.T) {
	data := sampleData()
	next, err := Replace(data, ReplaceAction{
		DestinationZone:  "cols:left",
		DestinationIndex: 0,
		Data:             ComponentData{Type: "Text", Props: map[string]any{"id": "t1", "text": "y"}},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if next.Zones["cols:left"][0].Props["text"] != "y" {
		t.Fatalf("expected nested replacement, got %+v", next.Zones["cols:left"][0])
	}
	if data.Zones["cols:left"][0].Props["text"] != "x" {
		t.Fatalf("input zone mutated")
	}
}

func TestReplaceRejectsInvalidTargets(t *testing.T) {
	data := sampleData()
	cases := []struct {
		name   string
		action ReplaceAction
		want   error
	}{
		{"missing zone", ReplaceAction{DestinationZone: "nope:zone", DestinationIndex: 0}, ErrZoneNotFound},
		{"negative index", ReplaceAction{DestinationIndex: -1}, ErrIndexOutOfRange},
		{"past end", ReplaceAction{DestinationIndex: 2}, ErrIndexOutOfRange},
		{
			"id collision",
			ReplaceAction{DestinationIndex: 0, Data: ComponentData{Type: "Text", Props: map[string]any{"id": "t1"}}},
			ErrDuplicateID,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Replace(data, tc.action); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestReduceActions(t *testing.T) {
	state := AppState{Data: sampleData()}

	replaced, err := Reduce(state, ReplaceAction{
		DestinationIndex: 1,
		Data:             ComponentData{Type: "Columns", Props: map[string]any{"id": "cols", "gap": 4}},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if replaced.Data.Content[1].Props["gap"] != 4 {
		t.Fatalf("expected gap prop, got %+v", replaced.Data.Content[1])
	}

	target := AppState{Data: Data{Root: RootData{Props: map[string]any{"title": "Other"}}}}
	set, err := Reduce(state, SetAction{State: target, RecordHistory: true})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if diff := cmp.Diff(target, set); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}

	legacy, err := Reduce(state, SetDataAction{Root: map[string]any{"title": "Flat", "readOnly": map[string]any{"title": true}}})
	if err != nil {
		t.Fatalf("setData: %v", err)
	}
	want := RootData{Props: map[string]any{"title": "Flat"}, ReadOnly: map[string]bool{"title": true}}
	if diff := cmp.Diff(want, legacy.Data.Root); diff != "" {
		t.Fatalf("setData root mismatch (-want +got):\n%s", diff)
	}

	if _, err := Reduce(state, nil); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestRecordsHistory(t *testing.T) {
	if !RecordsHistory(SetAction{RecordHistory: true}) {
		t.Fatalf("expected set with history to record")
	}
	if RecordsHistory(SetAction{}) || RecordsHistory(ReplaceAction{}) || RecordsHistory(SetDataAction{}) {
		t.Fatalf("expected only flagged set actions to record")
	}
}

func TestMergeUIOverlaysPatch(t *testing.T) {
	visible := true
	hidden := false
	base := UIState{
		ItemSelector:       &ItemSelector{Zone: RootZone, Index: 1},
		LeftSideBarVisible: &visible,
		Extra:              map[string]any{"viewport": "desktop", "panel": map[string]any{"a": 1}},
	}
	patch := &UIState{
		LeftSideBarVisible: &hidden,
		Extra:              map[string]any{"panel": map[string]any{"b": 2}},
	}

	merged := MergeUI(base, patch)
	if merged.ItemSelector == nil || merged.ItemSelector.Index != 1 {
		t.Fatalf("expected selector kept, got %+v", merged.ItemSelector)
	}
	if *merged.LeftSideBarVisible {
		t.Fatalf("expected patch to hide sidebar")
	}
	if !*base.LeftSideBarVisible {
		t.Fatalf("base mutated")
	}
	want := map[string]any{"viewport": "desktop", "panel": map[string]any{"a": 1, "b": 2}}
	if diff := cmp.Diff(want, merged.Extra); diff != "" {
		t.Fatalf("extra mismatch (-want +got):\n%s", diff)
	}

	same := MergeUI(base, nil)
	if diff := cmp.Diff(base, same); diff != "" {
		t.Fatalf("nil patch should clone base (-want +got):\n%s", diff)
	}
	if same.ItemSelector == base.ItemSelector {
		t.Fatalf("expected deep copy of selector")
	}
}

func TestDecodeNormalisesLegacyRoot(t *testing.T) {
	payload := map[string]any{
		"root": map[string]any{"title": "Legacy", "readOnly": map[string]any{"title": true}},
		"content": []any{
			map[string]any{"type": "Text", "props": map[string]any{"id": "t1", "text": "x"}},
		},
	}
	data, err := Decode("legacy", payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := RootData{Props: map[string]any{"title": "Legacy"}, ReadOnly: map[string]bool{"title": true}}
	if diff := cmp.Diff(want, data.Root); diff != "" {
		t.Fatalf("root mismatch (-want +got):\n%s", diff)
	}
	if data.Content[0].ID() != "t1" {
		t.Fatalf("expected component id t1, got %q", data.Content[0].ID())
	}
	if _, wrapped := payload["root"].(map[string]any)["props"]; wrapped {
		t.Fatalf("caller payload mutated")
	}
}

func TestDecodeCanonicalAndEmptyRoot(t *testing.T) {
	data, err := DecodeJSON("canonical", []byte(`{"root":{"props":{"title":"A"}},"content":[]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Root.Props["title"] != "A" {
		t.Fatalf("expected canonical props, got %+v", data.Root)
	}

	empty, err := DecodeJSON("empty", []byte(`{"content":[]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if empty.Root.Props == nil {
		t.Fatalf("expected root props initialised")
	}
}

func TestDecodeRejectsDuplicateIDs(t *testing.T) {
	payload := map[string]any{
		"root": map[string]any{"props": map[string]any{}},
		"content": []any{
			map[string]any{"type": "Text", "props": map[string]any{"id": "dup"}},
		},
		"zones": map[string]any{
			"x:y": []any{map[string]any{"type": "Text", "props": map[string]any{"id": "dup"}}},
		},
	}
	if _, err := Decode("dups", payload); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestFindByIDAndItemAt(t *testing.T) {
	data := sampleData()
	item, at, ok := FindByID(data, "t1")
	if !ok || at.Zone != "cols:left" || at.Index != 0 || item.Type != "Text" {
		t.Fatalf("unexpected lookup result %+v %+v %v", item, at, ok)
	}
	if _, ok := ItemAt(data, ItemSelector{Index: 5}); ok {
		t.Fatalf("expected out of range selector to miss")
	}
	if got, ok := ItemAt(data, ItemSelector{Index: 1}); !ok || got.ID() != "cols" {
		t.Fatalf("expected default zone lookup, got %+v", got)
	}
}
