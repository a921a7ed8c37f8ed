// Package event defines the section change event fanned out over the message
// queue and the WebSocket hub.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/folio/internal/domain/content"
)

// Type identifies the kind of section event.
type Type string

const (
	TypeSectionCreated Type = "section.created"
	TypeSectionUpdated Type = "section.updated"
	TypeSectionDeleted Type = "section.deleted"
)

// SectionEvent records one change to a section. Section is nil for deletions.
type SectionEvent struct {
	ID         string           `json:"id"`
	Type       Type             `json:"type"`
	PageKey    string           `json:"page_key"`
	SectionKey string           `json:"section_key"`
	Section    *content.Section `json:"section,omitempty"`
	RequestID  string           `json:"request_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewSectionEvent builds an event with a fresh id.
func NewSectionEvent(t Type, ref content.Ref, s *content.Section, requestID string) SectionEvent {
	return SectionEvent{
		ID:         uuid.NewString(),
		Type:       t,
		PageKey:    ref.PageKey,
		SectionKey: ref.SectionKey,
		Section:    s,
		RequestID:  requestID,
		CreatedAt:  time.Now().UTC(),
	}
}
