package hydrate

import (
	"errors"
	"strings"
	"testing"
)

type page struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestDecoderAppliesHooksInOrder(t *testing.T) {
	var calls []string
	decoder := NewDecoder[page](
		WithPreHook[page](func(_ Context, payload map[string]any) (map[string]any, error) {
			calls = append(calls, "pre")
			payload["title"] = strings.ToUpper(payload["title"].(string))
			return payload, nil
		}),
		WithPostHook[page](func(_ Context, p *page) error {
			calls = append(calls, "post")
			p.Tags = append(p.Tags, "hydrated")
			return nil
		}),
	)

	input := map[string]any{"title": "home", "tags": []any{"a"}}
	got, err := decoder.Decode(Context{DocumentID: "doc-1"}, input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Title != "HOME" {
		t.Fatalf("expected pre-hook rewrite, got %q", got.Title)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "hydrated" {
		t.Fatalf("expected post-hook append, got %v", got.Tags)
	}
	if input["title"] != "home" {
		t.Fatalf("expected caller payload untouched, got %v", input["title"])
	}
	if strings.Join(calls, ",") != "pre,post" {
		t.Fatalf("unexpected hook order %v", calls)
	}
}

func TestDecoderNilPayload(t *testing.T) {
	_, err := NewDecoder[page]().Decode(Context{DocumentID: "doc-2", Source: "cms"}, nil)
	if err == nil || !strings.Contains(err.Error(), "cms/doc-2") {
		t.Fatalf("expected labelled nil payload error, got %v", err)
	}
}

func TestDecoderWrapsHookErrors(t *testing.T) {
	boom := errors.New("boom")
	decoder := NewDecoder[page](WithPostHook[page](func(Context, *page) error { return boom }))
	_, err := decoder.Decode(Context{DocumentID: "doc-3"}, map[string]any{"title": "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped hook error, got %v", err)
	}
}

func TestDecoderDisallowUnknownFields(t *testing.T) {
	decoder := NewDecoder[page](WithDisallowUnknownFields[page]())
	if _, err := decoder.Decode(Context{DocumentID: "doc-4"}, map[string]any{"nope": 1}); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := NewDecoder[page]().Decode(Context{DocumentID: "doc-4"}, map[string]any{"nope": 1}); err != nil {
		t.Fatalf("expected lenient decode, got %v", err)
	}
}
