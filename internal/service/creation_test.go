package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Strob0t/folio/internal/domain"
	"github.com/Strob0t/folio/internal/domain/content"
	"github.com/Strob0t/folio/internal/domain/template"
)

func newTestFlow(store *mockStore, at time.Time) *CreationFlow {
	f := NewCreationFlow(template.Builtin(), store, "home")
	f.SetClock(func() time.Time { return at })
	return f
}

func TestCreationFlowSubmit(t *testing.T) {
	store := newMockStore()
	f := newTestFlow(store, time.UnixMilli(1700000000000))

	if f.CanSubmit() {
		t.Error("should not submit before selecting a template")
	}
	if err := f.SelectTemplate("faq"); err != nil {
		t.Fatal(err)
	}
	if f.Step() != StepConfigure {
		t.Fatalf("expected configure, got %s", f.Step())
	}
	if got := f.SectionKey(); got != "faq_1700000000000" {
		t.Errorf("unexpected derived key %q", got)
	}
	if f.Title() != "FAQ" {
		t.Errorf("expected title prefilled from template, got %q", f.Title())
	}

	sec, err := f.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if f.Step() != StepClosed {
		t.Errorf("expected closed, got %s", f.Step())
	}
	if !reflect.DeepEqual(sec.Content, content.Content{"faqs": []any{}}) {
		t.Errorf("unexpected content %v", sec.Content)
	}
	req := store.creates[0]
	if req.PageKey != "home" || !req.IsActive || !req.IsEditable {
		t.Errorf("unexpected create request %+v", req)
	}
}

func TestCreationFlowEmptyTitleBlocks(t *testing.T) {
	store := newMockStore()
	f := newTestFlow(store, time.Now())
	if err := f.SelectTemplate("hero"); err != nil {
		t.Fatal(err)
	}
	f.SetTitle("")
	f.SetSectionKey("valid_key")

	if f.CanSubmit() {
		t.Error("empty title must block submission")
	}
	if _, err := f.Submit(context.Background()); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if len(store.creates) != 0 {
		t.Fatalf("expected no store call, got %d", len(store.creates))
	}

	f.SetTitle("X")
	if !f.CanSubmit() {
		t.Error("setting a title should unblock submission")
	}
	sec, err := f.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sec.SectionKey != "valid_key" || sec.Title != "X" {
		t.Errorf("unexpected section %+v", sec)
	}
}

func TestCreationFlowEmptyKeyBlocks(t *testing.T) {
	store := newMockStore()
	f := newTestFlow(store, time.Now())
	if err := f.SelectTemplate("hero"); err != nil {
		t.Fatal(err)
	}
	if got := f.SetSectionKey(""); got != "" {
		t.Fatalf("unexpected key %q", got)
	}
	if _, err := f.Submit(context.Background()); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if len(store.creates) != 0 {
		t.Error("expected no store call")
	}
}

func TestCreationFlowNormalizesKeyOnInput(t *testing.T) {
	f := newTestFlow(newMockStore(), time.Now())
	if err := f.SelectTemplate("cta"); err != nil {
		t.Fatal(err)
	}
	for in, want := range map[string]string{
		"Hire Me":  "hire_me",
		"cta-2024": "cta_2024",
		"ok_key":   "ok_key",
	} {
		if got := f.SetSectionKey(in); got != want {
			t.Errorf("SetSectionKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreationFlowBackClearsTemplate(t *testing.T) {
	f := newTestFlow(newMockStore(), time.Now())
	if err := f.SelectTemplate("hero"); err != nil {
		t.Fatal(err)
	}
	f.Back()
	if f.Step() != StepSelectTemplate || f.Template() != nil || f.SectionKey() != "" {
		t.Errorf("back did not reset the flow: step=%s key=%q", f.Step(), f.SectionKey())
	}
	if err := f.SelectTemplate("about"); err != nil {
		t.Fatalf("reselect failed: %v", err)
	}
	if f.Template().ID != "about" {
		t.Errorf("expected about, got %s", f.Template().ID)
	}
}

func TestCreationFlowUnknownTemplate(t *testing.T) {
	f := newTestFlow(newMockStore(), time.Now())
	if err := f.SelectTemplate("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if f.Step() != StepSelectTemplate {
		t.Errorf("expected to stay at selection, got %s", f.Step())
	}
}

func TestCreationFlowStoreFailureAllowsRetry(t *testing.T) {
	store := newMockStore()
	store.createErr = errors.New("503 unavailable")
	f := newTestFlow(store, time.Now())
	if err := f.SelectTemplate("hero"); err != nil {
		t.Fatal(err)
	}

	if _, err := f.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if f.Step() != StepConfigure || !f.CanSubmit() {
		t.Fatalf("expected retryable configure step, got %s", f.Step())
	}
	store.createErr = nil
	if _, err := f.Submit(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestCreationFlowsAtDifferentTimes(t *testing.T) {
	store := newMockStore()
	t0 := time.UnixMilli(1700000000000)

	var secs []*content.Section
	for i, at := range []time.Time{t0, t0.Add(time.Millisecond)} {
		f := newTestFlow(store, at)
		if err := f.SelectTemplate("navbar"); err != nil {
			t.Fatal(err)
		}
		sec, err := f.Submit(context.Background())
		if err != nil {
			t.Fatalf("flow %d: %v", i, err)
		}
		secs = append(secs, sec)
	}
	if secs[0].SectionKey == secs[1].SectionKey {
		t.Error("expected distinct section keys")
	}
	if !content.Equal(secs[0].Content, secs[1].Content) {
		t.Error("expected identical default content")
	}
}
