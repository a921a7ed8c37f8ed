package content

import (
	"errors"
	"testing"

	"github.com/Strob0t/folio/internal/domain"
)

func TestValidateCreateRequest(t *testing.T) {
	valid := CreateRequest{PageKey: "home", SectionKey: "hero_1", Title: "Hero"}
	if err := ValidateCreateRequest(&valid); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	tests := []struct {
		name   string
		modify func(*CreateRequest)
	}{
		{"empty page", func(r *CreateRequest) { r.PageKey = "" }},
		{"empty key", func(r *CreateRequest) { r.SectionKey = "" }},
		{"uppercase key", func(r *CreateRequest) { r.SectionKey = "Hero" }},
		{"dash in key", func(r *CreateRequest) { r.SectionKey = "hero-1" }},
		{"empty title", func(r *CreateRequest) { r.Title = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.modify(&req)
			if err := ValidateCreateRequest(&req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestUpdateRequestApply(t *testing.T) {
	s := Section{PageKey: "home", SectionKey: "hero", Title: "Old", Content: Content{"a": "b"}, IsActive: true}
	title := "New"
	inactive := false
	req := UpdateRequest{Title: &title, IsActive: &inactive}
	req.Apply(&s)

	if s.Title != "New" || s.IsActive {
		t.Errorf("unexpected section after apply: %+v", s)
	}
	if s.Content["a"] != "b" {
		t.Error("content replaced although absent from request")
	}
	if s.Ref().String() != "home/hero" {
		t.Errorf("identity changed: %s", s.Ref())
	}
}
