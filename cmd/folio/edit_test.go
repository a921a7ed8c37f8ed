package main

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/Strob0t/folio/internal/domain"
	"github.com/Strob0t/folio/internal/domain/content"
	"github.com/Strob0t/folio/internal/domain/style"
	"github.com/Strob0t/folio/internal/service"
)

func openTestEditor(t *testing.T, c content.Content) *service.EditorSession {
	t.Helper()
	store := newMemStore()
	store.sections[content.Ref{PageKey: "home", SectionKey: "s"}] = content.Section{
		PageKey: "home", SectionKey: "s", Title: "S", Content: c, IsEditable: true,
	}
	e := service.NewEditorSession(store, "home", "s")
	if err := e.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestApplyEdit(t *testing.T) {
	tests := []struct {
		name string
		in   content.Content
		op   string
		args []string
		key  string
		want any
	}{
		{"set", content.Content{"title": "a"}, "set", []string{"title", "b"}, "title", "b"},
		{"set keeps number", content.Content{"count": json.Number("3")}, "set", []string{"count", "9007199254740993"}, "count", json.Number("9007199254740993")},
		{"set keeps bool", content.Content{"enabled": true}, "set", []string{"enabled", "false"}, "enabled", false},
		{"add", content.Content{"tags": []any{"go"}}, "add", []string{"tags", "sql"}, "tags", []any{"go", "sql"}},
		{"update-item", content.Content{"tags": []any{"go"}}, "update-item", []string{"tags", "0", "rust"}, "tags", []any{"rust"}},
		{"remove", content.Content{"tags": []any{"a", "b", "c"}}, "remove", []string{"tags", "1"}, "tags", []any{"a", "c"}},
		{
			"set-field",
			content.Content{"links": []any{map[string]any{"text": "a", "url": "/"}}},
			"set-field", []string{"links", "0", "url", "/x"},
			"links", []any{map[string]any{"text": "a", "url": "/x"}},
		},
		{
			"add-item to empty",
			content.Content{"links": []any{}},
			"add-item", []string{"links", "text=Home"},
			"links", []any{map[string]any{"text": "Home", "url": ""}},
		},
		{"json", content.Content{"data": map[string]any{}}, "json", []string{"data", `{"a":1}`}, "data", map[string]any{"a": json.Number("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := openTestEditor(t, tt.in)
			if err := applyEdit(e, tt.op, tt.args); err != nil {
				t.Fatal(err)
			}
			got, _ := e.Value(tt.key)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyEditRejects(t *testing.T) {
	tests := []struct {
		name string
		op   string
		args []string
	}{
		{"unknown op", "rename", []string{"a"}},
		{"wrong arity", "set", []string{"title"}},
		{"bad index", "remove", []string{"tags", "x"}},
		{"bad pair", "add-item", []string{"links", "novalue"}},
		{"bad axis", "style", []string{"style", "color=red"}},
		{"bad json", "json", []string{"data", "{"}},
		{"set list field", "set", []string{"tags", "x"}},
		{"set number field to text", "set", []string{"count", "many"}},
		{"set bool field to text", "set", []string{"enabled", "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := openTestEditor(t, content.Content{
				"tags": []any{"a"}, "links": []any{}, "data": map[string]any{},
				"count": float64(3), "enabled": true,
			})
			if err := applyEdit(e, tt.op, tt.args); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
			if e.Dirty() {
				t.Error("rejected edit changed the draft")
			}
		})
	}
}

func TestApplyEditStyle(t *testing.T) {
	e := openTestEditor(t, content.Content{})
	if err := applyEdit(e, "style", []string{"style", "width=narrow", "spacing=relaxed"}); err != nil {
		t.Fatal(err)
	}
	v, _ := e.Value("style")
	sel := style.SelectionFrom(v)
	if sel.Width != "narrow" || sel.Spacing != "relaxed" || sel.Height != "auto" {
		t.Errorf("unexpected selection %+v", sel)
	}
}

func TestParsePairsKeepsEquals(t *testing.T) {
	pairs, err := parsePairs([]string{"url=https://x?a=b"})
	if err != nil {
		t.Fatal(err)
	}
	if pairs[0][0] != "url" || pairs[0][1] != "https://x?a=b" {
		t.Errorf("unexpected pair %v", pairs[0])
	}
}

func TestOriginPatterns(t *testing.T) {
	tests := map[string][]string{
		"":                      nil,
		"*":                     nil,
		"http://localhost:3000": {"localhost:3000"},
		"admin.example.com":     {"admin.example.com"},
	}
	for in, want := range tests {
		if got := originPatterns(in); !reflect.DeepEqual(got, want) {
			t.Errorf("originPatterns(%q) = %v, want %v", in, got, want)
		}
	}
}
