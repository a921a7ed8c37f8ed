// Package content defines editable page sections and the shape-preserving
// operations applied to their schema-less JSON content.
package content

import (
	"fmt"
	"regexp"
	"time"

	"github.com/Strob0t/folio/internal/domain"
)

// Content maps a field name to an arbitrary JSON value.
type Content map[string]any

// Section is one editable unit of page content, identified by (PageKey, SectionKey).
type Section struct {
	ID          string    `json:"id,omitempty"`
	PageKey     string    `json:"page_key"`
	SectionKey  string    `json:"section_key"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     Content   `json:"content"`
	IsActive    bool      `json:"is_active"`
	IsEditable  bool      `json:"is_editable"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Ref returns the stable identity of the section.
func (s *Section) Ref() Ref {
	return Ref{PageKey: s.PageKey, SectionKey: s.SectionKey}
}

// Ref is the (page_key, section_key) pair used for every read and write.
type Ref struct {
	PageKey    string `json:"page_key"`
	SectionKey string `json:"section_key"`
}

func (r Ref) String() string {
	return r.PageKey + "/" + r.SectionKey
}

// CreateRequest holds the fields for creating a section.
type CreateRequest struct {
	PageKey     string  `json:"page_key"`
	SectionKey  string  `json:"section_key"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     Content `json:"content"`
	IsActive    bool    `json:"is_active"`
	IsEditable  bool    `json:"is_editable"`
}

// UpdateRequest holds a partial update. Content, when present, replaces the
// stored mapping as a whole.
type UpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Content     Content `json:"content,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsEditable  *bool   `json:"is_editable,omitempty"`
}

// Apply copies the present fields of req onto s.
func (req *UpdateRequest) Apply(s *Section) {
	if req.Title != nil {
		s.Title = *req.Title
	}
	if req.Description != nil {
		s.Description = *req.Description
	}
	if req.Content != nil {
		s.Content = req.Content
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	if req.IsEditable != nil {
		s.IsEditable = *req.IsEditable
	}
}

var keyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidKey reports whether k only uses the identifier character class [a-z0-9_].
func ValidKey(k string) bool {
	return keyPattern.MatchString(k)
}

// ValidateRef checks both halves of a section identity.
func ValidateRef(pageKey, sectionKey string) error {
	if pageKey == "" {
		return fmt.Errorf("%w: page_key is required", domain.ErrValidation)
	}
	if sectionKey == "" {
		return fmt.Errorf("%w: section_key is required", domain.ErrValidation)
	}
	if len(pageKey) > 64 || len(sectionKey) > 128 {
		return fmt.Errorf("%w: page_key or section_key too long", domain.ErrValidation)
	}
	if !ValidKey(pageKey) {
		return fmt.Errorf("%w: page_key %q must match [a-z0-9_]", domain.ErrValidation, pageKey)
	}
	if !ValidKey(sectionKey) {
		return fmt.Errorf("%w: section_key %q must match [a-z0-9_]", domain.ErrValidation, sectionKey)
	}
	return nil
}

// ValidateCreateRequest validates a section creation request.
func ValidateCreateRequest(req *CreateRequest) error {
	if err := ValidateRef(req.PageKey, req.SectionKey); err != nil {
		return err
	}
	if req.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if len(req.Title) > 255 {
		return fmt.Errorf("%w: title exceeds 255 characters", domain.ErrValidation)
	}
	if len(req.Description) > 2000 {
		return fmt.Errorf("%w: description exceeds 2000 characters", domain.ErrValidation)
	}
	return nil
}

// ValidateUpdateRequest validates a partial update.
func ValidateUpdateRequest(req *UpdateRequest) error {
	if req.Title != nil && *req.Title == "" {
		return fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
	}
	if req.Title != nil && len(*req.Title) > 255 {
		return fmt.Errorf("%w: title exceeds 255 characters", domain.ErrValidation)
	}
	if req.Description != nil && len(*req.Description) > 2000 {
		return fmt.Errorf("%w: description exceeds 2000 characters", domain.ErrValidation)
	}
	return nil
}
