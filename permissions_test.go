package fields

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-fields/pkg/document"
)

func TestGateRootUsesReadOnlyMapOnly(t *testing.T) {
	ec, _ := editorFor(t, Config{}, -1)
	ec.State.Data.Root.ReadOnly = map[string]bool{"title": true}
	ec.GlobalPermissions = map[string]bool{PermissionEdit: false}

	var gate Gate
	if ro, err := gate.ReadOnly(context.Background(), ec, "title"); err != nil || !ro {
		t.Fatalf("expected title read-only, got %v err=%v", ro, err)
	}
	if ro, _ := gate.ReadOnly(context.Background(), ec, "description"); ro {
		t.Fatalf("root fields ignore global permissions")
	}
}

func TestGateNestedPermissions(t *testing.T) {
	cfg := Config{Components: map[string]ComponentConfig{
		"Text": {
			Fields:      textSchema("text", "align"),
			Permissions: map[string]bool{"*": false, "align": true},
		},
	}}

	cases := []struct {
		name     string
		global   map[string]bool
		readOnly map[string]bool
		resolver PermissionResolver
		field    string
		want     bool
	}{
		{name: "wildcard denies", field: "text", want: true},
		{name: "named entry wins", field: "align", want: false},
		{name: "item readOnly wins", field: "align", readOnly: map[string]bool{"align": true}, want: true},
		{
			name:   "global edit fallback",
			global: map[string]bool{PermissionEdit: false},
			resolver: func(context.Context, PermissionRequest) (map[string]bool, error) {
				return map[string]bool{"text": true}, nil
			},
			field: "align",
			want:  true,
		},
		{
			name: "custom resolver grants",
			resolver: func(_ context.Context, req PermissionRequest) (map[string]bool, error) {
				if req.Item.ID() != "c1" || req.Selection.Index != 0 {
					return nil, errors.New("unexpected request")
				}
				return map[string]bool{"text": true}, nil
			},
			field: "text",
			want:  false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ec, _ := editorFor(t, cfg, 0)
			ec.GlobalPermissions = tc.global
			ec.Permissions = tc.resolver
			if tc.readOnly != nil {
				ec.State.Data.Content[0].ReadOnly = tc.readOnly
			}
			got, err := Gate{}.ReadOnly(context.Background(), ec, tc.field)
			if err != nil {
				t.Fatalf("read only: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected readOnly=%v for %q, got %v", tc.want, tc.field, got)
			}
		})
	}
}

func TestGateWildcardCoversResolvedFields(t *testing.T) {
	cfg := Config{Components: map[string]ComponentConfig{
		"Text": {
			Fields:      textSchema("text"),
			Permissions: map[string]bool{PermissionWildcard: false},
			ResolveFields: func(_ context.Context, _ Entity, params ResolveParams) (Schema, error) {
				return params.Fields.With("align", Field{Type: "select"}), nil
			},
		},
	}}
	ec, _ := editorFor(t, cfg, 0)
	schema, _, err := NewEngine().Trigger(context.Background(), ec)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if _, ok := schema.Get("align"); !ok {
		t.Fatalf("expected hook to add align, got %v", schema.Names())
	}

	flags, err := Gate{}.Flags(context.Background(), ec)
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	for _, name := range schema.Names() {
		if !flags.ReadOnly(name) {
			t.Fatalf("expected %q read-only under a denying wildcard", name)
		}
	}
}

func TestGateResolverError(t *testing.T) {
	boom := errors.New("boom")
	ec, _ := editorFor(t, Config{}, 0)
	ec.Permissions = func(context.Context, PermissionRequest) (map[string]bool, error) {
		return nil, boom
	}
	if _, err := (Gate{}).Flags(context.Background(), ec); !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}

func TestDefaultPermissionResolverUnknownType(t *testing.T) {
	out, err := DefaultPermissionResolver(context.Background(), PermissionRequest{
		Item: document.ComponentData{Type: "Missing"},
	})
	if err != nil || len(out) != 0 {
		t.Fatalf("expected empty permissions, got %v err=%v", out, err)
	}
}
