package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/Strob0t/folio/internal/domain"
	"github.com/Strob0t/folio/internal/domain/content"
	"github.com/Strob0t/folio/internal/domain/style"
)

func openEditor(t *testing.T, store *mockStore, pageKey, sectionKey string) *EditorSession {
	t.Helper()
	e := NewEditorSession(store, pageKey, sectionKey)
	if err := e.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if e.State() != EditorReady {
		t.Fatalf("expected ready, got %s", e.State())
	}
	return e
}

func TestEditorOpenNotFound(t *testing.T) {
	e := NewEditorSession(newMockStore(), "home", "hero")
	err := e.Open(context.Background())

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Error("NotFoundError should unwrap to ErrNotFound")
	}
	if nf.Ref.String() != "home/hero" {
		t.Errorf("unexpected ref %s", nf.Ref)
	}
	if e.State() != EditorClosed {
		t.Errorf("expected closed, got %s", e.State())
	}
}

func TestEditorOpenFailure(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("connection refused")
	e := NewEditorSession(store, "home", "hero")

	err := e.Open(context.Background())
	var nf *NotFoundError
	if err == nil || errors.As(err, &nf) {
		t.Fatalf("expected a plain load error, got %v", err)
	}
	if e.State() != EditorClosed || e.Err() == nil {
		t.Errorf("expected closed with error, got %s / %v", e.State(), e.Err())
	}
	if err := e.SetScalar("title", "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestEditorRoundTripWithoutEdits(t *testing.T) {
	original := content.Content{
		"title": "Hi",
		"links": []any{map[string]any{"name": "GitHub", "url": "https://x", "enabled": true}},
		"stats": []any{"a", float64(2), nil},
		"form":  map[string]any{"enabled": true, "nested": map[string]any{"n": float64(1)}},
		"empty": []any{},
	}
	store := newMockStore(editableSection("home", "hero", content.Clone(original)))
	e := openEditor(t, store, "home", "hero")

	if e.Dirty() {
		t.Error("fresh session should not be dirty")
	}
	if _, err := e.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := store.stored("home", "hero").Content; !reflect.DeepEqual(got, original) {
		t.Errorf("round trip changed content:\n got %v\nwant %v", got, original)
	}
	if len(store.updates) != 1 || store.updates[0].Content == nil {
		t.Error("save must send the full content mapping")
	}
}

func TestEditorPrimitiveAddRemoveRestores(t *testing.T) {
	store := newMockStore(editableSection("home", "skills", content.Content{"skills": []any{"Go", "SQL"}}))
	e := openEditor(t, store, "home", "skills")

	if err := e.AddItem("skills", "Rust"); err != nil {
		t.Fatal(err)
	}
	if !e.Dirty() {
		t.Error("expected dirty after add")
	}
	if err := e.RemoveItem("skills", 2); err != nil {
		t.Fatal(err)
	}
	v, _ := e.Value("skills")
	if !reflect.DeepEqual(v, []any{"Go", "SQL"}) {
		t.Errorf("expected original order, got %v", v)
	}
	if e.Dirty() {
		t.Error("expected clean after add+remove")
	}
}

func TestEditorAddObjectItemFromFirst(t *testing.T) {
	store := newMockStore(editableSection("home", "social", content.Content{
		"links": []any{map[string]any{"name": "GitHub", "url": "https://x", "enabled": true}},
	}))
	e := openEditor(t, store, "home", "social")

	item, err := e.AddObjectItem("links")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"name": "", "url": "", "enabled": true}
	if !reflect.DeepEqual(item, want) {
		t.Errorf("expected %v, got %v", want, item)
	}
	v, _ := e.Value("links")
	if arr := v.([]any); len(arr) != 2 || !reflect.DeepEqual(arr[1], want) {
		t.Errorf("item not appended: %v", arr)
	}
}

func TestEditorAddObjectItemToEmptyArray(t *testing.T) {
	store := newMockStore(editableSection("home", "nav", content.Content{"links": []any{}}))
	e := openEditor(t, store, "home", "nav")

	item, err := e.AddObjectItem("links")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(item, map[string]any{"text": "", "url": ""}) {
		t.Errorf("expected link-shaped fallback, got %v", item)
	}
}

func TestEditorMutationPreservesSiblings(t *testing.T) {
	store := newMockStore(editableSection("home", "nav", content.Content{
		"logo_text": "Portfolio",
		"links":     []any{map[string]any{"text": "Home", "url": "/"}},
	}))
	e := openEditor(t, store, "home", "nav")
	before := e.draft

	if err := e.SetScalar("logo_text", "Me"); err != nil {
		t.Fatal(err)
	}
	after := e.draft

	if before["logo_text"] != "Portfolio" {
		t.Error("mutation modified the previous draft")
	}
	if &before["links"].([]any)[0] != &after["links"].([]any)[0] {
		t.Error("untouched sibling was copied instead of shared")
	}

	if err := e.UpdateItemField("links", 0, "text", "Start"); err != nil {
		t.Fatal(err)
	}
	if after["links"].([]any)[0].(map[string]any)["text"] != "Home" {
		t.Error("item field edit leaked into the previous draft")
	}
	if err := e.UpdateItem("links", 0, map[string]any{"text": "About", "url": "/about"}); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateItem("links", 3, "x"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for out-of-range index, got %v", err)
	}
	if err := e.SetScalar("logo_text", []any{"x"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for non-scalar, got %v", err)
	}
	if err := e.SetScalar("links", "x"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation when a list field is set to text, got %v", err)
	}
	if v, _ := e.Value("links"); len(v.([]any)) == 0 {
		t.Error("rejected scalar set replaced the list")
	}
}

func TestEditorOpaqueText(t *testing.T) {
	store := newMockStore(editableSection("home", "contact", content.Content{
		"form":  map[string]any{"enabled": true},
		"title": "Contact",
	}))
	e := openEditor(t, store, "home", "contact")

	err := e.EditOpaqueText("form", `{"a": 1,`)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	v, _ := e.Value("form")
	if !reflect.DeepEqual(v, map[string]any{"enabled": true}) {
		t.Errorf("invalid text changed the draft: %v", v)
	}
	if got := e.OpaqueText("form"); got != `{"a": 1,` {
		t.Errorf("pending text lost, got %q", got)
	}
	for _, f := range e.Fields() {
		if f.Key == "form" && f.Text != `{"a": 1,` {
			t.Errorf("field view should show pending text, got %q", f.Text)
		}
	}

	if err := e.EditOpaqueText("form", `{"a": 1}`); err != nil {
		t.Fatal(err)
	}
	v, _ = e.Value("form")
	if !reflect.DeepEqual(v, map[string]any{"a": json.Number("1")}) {
		t.Errorf("expected parsed object, got %v", v)
	}
	if got := e.OpaqueText("form"); got != "{\n  \"a\": 1\n}" {
		t.Errorf("expected formatted draft value, got %q", got)
	}
	if title, _ := e.Value("title"); title != "Contact" {
		t.Errorf("sibling changed: %v", title)
	}
}

func TestEditorApplyStyle(t *testing.T) {
	store := newMockStore(editableSection("home", "hero", content.Content{"title": "Hi"}))
	e := openEditor(t, store, "home", "hero")

	dark := "dark"
	p, err := e.ApplyStyle("style", style.Changes{Background: &dark})
	if err != nil {
		t.Fatal(err)
	}
	if p.ClassName != "container mx-auto bg-gray-900 text-white" {
		t.Errorf("unexpected class name %q", p.ClassName)
	}
	v, _ := e.Value("style")
	if sel := style.SelectionFrom(v); sel.Background != "dark" || sel.Width != "container" {
		t.Errorf("selection not stored: %+v", sel)
	}

	custom := "custom"
	if _, err := e.ApplyStyle("style", style.Changes{Width: &custom}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	v2, _ := e.Value("style")
	if !reflect.DeepEqual(v, v2) {
		t.Error("rejected style change modified the draft")
	}
}

func TestEditorSaveFailureKeepsDraft(t *testing.T) {
	store := newMockStore(editableSection("home", "hero", content.Content{"title": "Hi"}))
	e := openEditor(t, store, "home", "hero")

	if err := e.SetScalar("title", "Hello"); err != nil {
		t.Fatal(err)
	}
	store.updateErr = errors.New("500 internal")
	if _, err := e.Save(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if e.State() != EditorReady || !e.Dirty() {
		t.Fatalf("expected ready and dirty, got %s dirty=%v", e.State(), e.Dirty())
	}
	if v, _ := e.Value("title"); v != "Hello" {
		t.Errorf("draft lost: %v", v)
	}

	store.updateErr = nil
	if _, err := e.Save(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if e.Dirty() {
		t.Error("expected clean after successful retry")
	}
	if store.stored("home", "hero").Content["title"] != "Hello" {
		t.Error("retry did not persist the draft")
	}
}

func TestEditorConcurrentSaveIsBusy(t *testing.T) {
	store := newMockStore(editableSection("home", "hero", content.Content{"title": "Hi"}))
	e := openEditor(t, store, "home", "hero")
	store.updateGate = make(chan struct{})
	store.updating = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := e.Save(context.Background())
		done <- err
	}()
	<-store.updating

	if e.State() != EditorSaving {
		t.Errorf("expected saving, got %s", e.State())
	}
	store.updating = nil
	if _, err := e.Save(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if err := e.SetScalar("title", "During save"); err != nil {
		t.Errorf("edits during save should be accepted, got %v", err)
	}

	close(store.updateGate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !e.Dirty() {
		t.Error("edit made during save should leave the session dirty")
	}
}

func TestEditorCloseDuringSaveDiscardsResult(t *testing.T) {
	store := newMockStore(editableSection("home", "hero", content.Content{"title": "Hi"}))
	e := openEditor(t, store, "home", "hero")
	if err := e.SetScalar("title", "Bye"); err != nil {
		t.Fatal(err)
	}
	store.updateGate = make(chan struct{})
	store.updating = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := e.Save(context.Background())
		done <- err
	}()
	<-store.updating
	e.Close()
	close(store.updateGate)

	if err := <-done; err != nil {
		t.Fatalf("save should complete, got %v", err)
	}
	if e.State() != EditorClosed {
		t.Errorf("expected closed, got %s", e.State())
	}
	if store.stored("home", "hero").Content["title"] != "Bye" {
		t.Error("in-flight save should still reach the store")
	}
}

func TestEditorReadOnlySection(t *testing.T) {
	sec := editableSection("home", "footer", content.Content{"copyright": "2024"})
	sec.IsEditable = false
	e := openEditor(t, newMockStore(sec), "home", "footer")

	if err := e.SetScalar("copyright", "2025"); !errors.Is(err, domain.ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if _, err := e.Save(context.Background()); !errors.Is(err, domain.ErrReadOnly) {
		t.Errorf("expected ErrReadOnly on save, got %v", err)
	}
	if len(e.Fields()) != 1 {
		t.Error("read-only sections should still be viewable")
	}
}

func TestEditorOpenTwice(t *testing.T) {
	store := newMockStore(editableSection("home", "hero", content.Content{}))
	e := openEditor(t, store, "home", "hero")
	if err := e.Open(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if store.gets != 1 {
		t.Errorf("expected one load, got %d", store.gets)
	}
}
