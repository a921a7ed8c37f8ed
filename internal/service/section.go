// Package service implements business logic on top of ports.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	cfotel "github.com/Strob0t/folio/internal/adapter/otel"
	"github.com/Strob0t/folio/internal/domain"
	"github.com/Strob0t/folio/internal/domain/content"
	"github.com/Strob0t/folio/internal/domain/event"
	"github.com/Strob0t/folio/internal/logger"
	"github.com/Strob0t/folio/internal/port/broadcast"
	"github.com/Strob0t/folio/internal/port/contentstore"
	"github.com/Strob0t/folio/internal/port/messagequeue"
)

// SectionService handles section persistence on the server side: validation,
// change events and metrics around a Content Store.
type SectionService struct {
	store   contentstore.Store
	queue   messagequeue.Queue
	hub     broadcast.Broadcaster
	metrics *cfotel.Metrics
}

// NewSectionService creates a new SectionService.
func NewSectionService(store contentstore.Store) *SectionService {
	return &SectionService{store: store}
}

// SetQueue enables publishing of section change events.
func (s *SectionService) SetQueue(q messagequeue.Queue) { s.queue = q }

// SetBroadcaster sets the hub that receives section change events.
func (s *SectionService) SetBroadcaster(b broadcast.Broadcaster) { s.hub = b }

// SetMetrics sets the metric instruments recorded on writes.
func (s *SectionService) SetMetrics(m *cfotel.Metrics) { s.metrics = m }

// List returns the sections of a page, or all sections when pageKey is empty.
func (s *SectionService) List(ctx context.Context, pageKey string) ([]content.Section, error) {
	if pageKey != "" && !content.ValidKey(pageKey) {
		return nil, fmt.Errorf("%w: page_key %q must match [a-z0-9_]", domain.ErrValidation, pageKey)
	}
	return s.store.ListSections(ctx, pageKey)
}

// Get returns one section.
func (s *SectionService) Get(ctx context.Context, pageKey, sectionKey string) (*content.Section, error) {
	if err := content.ValidateRef(pageKey, sectionKey); err != nil {
		return nil, err
	}
	return s.store.GetSection(ctx, pageKey, sectionKey)
}

// Fields returns the inferred field views of a section's content.
func (s *SectionService) Fields(ctx context.Context, pageKey, sectionKey string) ([]content.FieldView, error) {
	sec, err := s.Get(ctx, pageKey, sectionKey)
	if err != nil {
		return nil, err
	}
	return content.Describe(sec.Content), nil
}

// Create validates and stores a new section.
func (s *SectionService) Create(ctx context.Context, req *content.CreateRequest) (sec *content.Section, err error) {
	if err := content.ValidateCreateRequest(req); err != nil {
		return nil, err
	}
	if req.Content == nil {
		req.Content = content.Content{}
	}

	ctx, span := cfotel.StartSectionSpan(ctx, "section.create", req.PageKey, req.SectionKey)
	defer func() { cfotel.EndSpan(span, err) }()
	start := time.Now()

	sec, err = s.store.CreateSection(ctx, req)
	s.metrics.RecordWrite(ctx, "create", req.PageKey, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "section created", "section", sec.Ref().String())
	s.emit(ctx, event.TypeSectionCreated, messagequeue.SubjectSectionCreated, sec.Ref(), sec)
	return sec, nil
}

// Update applies a partial update. A section marked not editable only
// accepts requests that make it editable again or touch no content.
func (s *SectionService) Update(ctx context.Context, pageKey, sectionKey string, req *content.UpdateRequest) (sec *content.Section, err error) {
	if err := content.ValidateRef(pageKey, sectionKey); err != nil {
		return nil, err
	}
	if err := content.ValidateUpdateRequest(req); err != nil {
		return nil, err
	}

	ctx, span := cfotel.StartSectionSpan(ctx, "section.update", pageKey, sectionKey)
	defer func() { cfotel.EndSpan(span, err) }()

	if req.Content != nil && (req.IsEditable == nil || !*req.IsEditable) {
		current, err := s.store.GetSection(ctx, pageKey, sectionKey)
		if err != nil {
			return nil, err
		}
		if !current.IsEditable {
			return nil, fmt.Errorf("update section %s/%s: %w", pageKey, sectionKey, domain.ErrReadOnly)
		}
	}

	start := time.Now()
	sec, err = s.store.UpdateSection(ctx, pageKey, sectionKey, req)
	s.metrics.RecordWrite(ctx, "update", pageKey, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "section updated", "section", sec.Ref().String())
	s.emit(ctx, event.TypeSectionUpdated, messagequeue.SubjectSectionUpdated, sec.Ref(), sec)
	return sec, nil
}

// Delete removes a section.
func (s *SectionService) Delete(ctx context.Context, pageKey, sectionKey string) (err error) {
	if err := content.ValidateRef(pageKey, sectionKey); err != nil {
		return err
	}

	ctx, span := cfotel.StartSectionSpan(ctx, "section.delete", pageKey, sectionKey)
	defer func() { cfotel.EndSpan(span, err) }()
	start := time.Now()

	err = s.store.DeleteSection(ctx, pageKey, sectionKey)
	s.metrics.RecordWrite(ctx, "delete", pageKey, time.Since(start).Seconds(), err)
	if err != nil {
		return err
	}

	ref := content.Ref{PageKey: pageKey, SectionKey: sectionKey}
	slog.InfoContext(ctx, "section deleted", "section", ref.String())
	s.emit(ctx, event.TypeSectionDeleted, messagequeue.SubjectSectionDeleted, ref, nil)
	return nil
}

// emit publishes a change event. Without a queue the event goes straight to
// the hub; with one, the relay started by RelayEvents delivers it.
func (s *SectionService) emit(ctx context.Context, t event.Type, subject string, ref content.Ref, sec *content.Section) {
	ev := event.NewSectionEvent(t, ref, sec, logger.RequestID(ctx))

	if s.queue == nil {
		if s.hub != nil {
			s.hub.BroadcastEvent(ctx, string(ev.Type), ev)
		}
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		slog.ErrorContext(ctx, "marshal section event", "error", err)
		return
	}
	// The write already succeeded; a lost event only delays other admins' view.
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.ErrorContext(ctx, "failed to publish section event", "section", ref.String(), "error", err)
	}
}

// RelayEvents subscribes to every section event on the queue. Each event is
// passed to invalidate (when set) and forwarded to the hub. The returned
// function stops the relay.
func (s *SectionService) RelayEvents(ctx context.Context, invalidate func(ctx context.Context, pageKey, sectionKey string)) (func(), error) {
	if s.queue == nil {
		return func() {}, nil
	}
	return s.queue.Subscribe(ctx, messagequeue.SubjectSectionAll, func(ctx context.Context, _ string, data []byte) error {
		var ev event.SectionEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decode section event: %w", err)
		}
		if invalidate != nil {
			invalidate(ctx, ev.PageKey, ev.SectionKey)
		}
		if s.hub != nil {
			s.hub.BroadcastEvent(ctx, string(ev.Type), ev)
		}
		return nil
	})
}
