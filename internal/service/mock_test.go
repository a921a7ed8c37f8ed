package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Strob0t/folio/internal/domain"
	"github.com/Strob0t/folio/internal/domain/content"
	"github.com/Strob0t/folio/internal/port/messagequeue"
)

// mockStore is an in-memory contentstore.Store.
type mockStore struct {
	mu       sync.Mutex
	sections map[content.Ref]content.Section

	getErr    error
	createErr error
	updateErr error

	// updateGate, when set, blocks UpdateSection until it is closed.
	updateGate chan struct{}
	// updating is closed once UpdateSection has been entered.
	updating chan struct{}

	gets    int
	creates []content.CreateRequest
	updates []content.UpdateRequest
}

func newMockStore(sections ...content.Section) *mockStore {
	s := &mockStore{sections: make(map[content.Ref]content.Section)}
	for _, sec := range sections {
		s.sections[sec.Ref()] = sec
	}
	return s
}

func (s *mockStore) GetSection(_ context.Context, pageKey, sectionKey string) (*content.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	sec, ok := s.sections[content.Ref{PageKey: pageKey, SectionKey: sectionKey}]
	if !ok {
		return nil, fmt.Errorf("section %s/%s: %w", pageKey, sectionKey, domain.ErrNotFound)
	}
	sec.Content = content.Clone(sec.Content)
	return &sec, nil
}

func (s *mockStore) ListSections(_ context.Context, pageKey string) ([]content.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []content.Section
	for ref, sec := range s.sections {
		if pageKey == "" || ref.PageKey == pageKey {
			out = append(out, sec)
		}
	}
	return out, nil
}

func (s *mockStore) CreateSection(_ context.Context, req *content.CreateRequest) (*content.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, *req)
	if s.createErr != nil {
		return nil, s.createErr
	}
	ref := content.Ref{PageKey: req.PageKey, SectionKey: req.SectionKey}
	if _, exists := s.sections[ref]; exists {
		return nil, fmt.Errorf("section %s: %w", ref, domain.ErrConflict)
	}
	now := time.Now().UTC()
	sec := content.Section{
		ID:          fmt.Sprintf("id-%d", len(s.sections)+1),
		PageKey:     req.PageKey,
		SectionKey:  req.SectionKey,
		Title:       req.Title,
		Description: req.Description,
		Content:     content.Clone(req.Content),
		IsActive:    req.IsActive,
		IsEditable:  req.IsEditable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.sections[ref] = sec
	return &sec, nil
}

func (s *mockStore) UpdateSection(_ context.Context, pageKey, sectionKey string, req *content.UpdateRequest) (*content.Section, error) {
	if s.updating != nil {
		close(s.updating)
	}
	if s.updateGate != nil {
		<-s.updateGate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, *req)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	ref := content.Ref{PageKey: pageKey, SectionKey: sectionKey}
	sec, ok := s.sections[ref]
	if !ok {
		return nil, fmt.Errorf("section %s: %w", ref, domain.ErrNotFound)
	}
	req.Apply(&sec)
	sec.Content = content.Clone(sec.Content)
	sec.UpdatedAt = time.Now().UTC()
	s.sections[ref] = sec
	return &sec, nil
}

func (s *mockStore) DeleteSection(_ context.Context, pageKey, sectionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := content.Ref{PageKey: pageKey, SectionKey: sectionKey}
	if _, ok := s.sections[ref]; !ok {
		return fmt.Errorf("section %s: %w", ref, domain.ErrNotFound)
	}
	delete(s.sections, ref)
	return nil
}

func (s *mockStore) stored(pageKey, sectionKey string) content.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sections[content.Ref{PageKey: pageKey, SectionKey: sectionKey}]
}

// mockQueue implements messagequeue.Queue for testing.
type mockQueue struct {
	mu        sync.Mutex
	published []struct {
		subject string
		data    []byte
	}
	publishErr error
	handler    messagequeue.Handler
	subject    string
}

func (q *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, struct {
		subject string
		data    []byte
	}{subject, data})
	return nil
}

func (q *mockQueue) Subscribe(_ context.Context, subject string, h messagequeue.Handler) (func(), error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.subject = subject
	q.handler = h
	return func() {}, nil
}

func (q *mockQueue) Close() error { return nil }

// mockHub records broadcast events.
type mockHub struct {
	mu     sync.Mutex
	events []string
}

func (h *mockHub) BroadcastEvent(_ context.Context, eventType string, _ any) {
	h.mu.Lock()
	h.events = append(h.events, eventType)
	h.mu.Unlock()
}

func editableSection(pageKey, sectionKey string, c content.Content) content.Section {
	return content.Section{
		ID:         "id-" + sectionKey,
		PageKey:    pageKey,
		SectionKey: sectionKey,
		Title:      sectionKey,
		Content:    c,
		IsActive:   true,
		IsEditable: true,
	}
}
