package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Strob0t/folio/internal/domain"
	"github.com/Strob0t/folio/internal/domain/content"
	"github.com/Strob0t/folio/internal/domain/template"
	"github.com/Strob0t/folio/internal/port/contentstore"
)

// CreationStep is the current step of a CreationFlow.
type CreationStep string

const (
	StepSelectTemplate CreationStep = "select-template"
	StepConfigure      CreationStep = "configure"
	StepClosed         CreationStep = "closed"
)

// CreationFlow creates a new section on a fixed page from a template. The
// operator picks a template, then adjusts the derived section key, title and
// description before submitting.
type CreationFlow struct {
	registry *template.Registry
	store    contentstore.Store
	pageKey  string
	now      func() time.Time

	mu          sync.Mutex
	step        CreationStep
	tpl         *template.Template
	sectionKey  string
	title       string
	description string
	submitting  bool
}

// NewCreationFlow starts a flow at the template selection step.
func NewCreationFlow(registry *template.Registry, store contentstore.Store, pageKey string) *CreationFlow {
	return &CreationFlow{
		registry: registry,
		store:    store,
		pageKey:  pageKey,
		now:      time.Now,
		step:     StepSelectTemplate,
	}
}

// SetClock replaces the clock used to derive section keys.
func (f *CreationFlow) SetClock(now func() time.Time) { f.now = now }

// Templates lists the templates available for selection.
func (f *CreationFlow) Templates() []template.Template { return f.registry.List() }

// PageKey returns the page the section is created on.
func (f *CreationFlow) PageKey() string { return f.pageKey }

// Step returns the current step.
func (f *CreationFlow) Step() CreationStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Template returns the selected template, or nil before selection.
func (f *CreationFlow) Template() *template.Template {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tpl
}

// SelectTemplate picks a template and prefills the form: the section key is
// derived from the template id and the current time, title and description
// come from the template.
func (f *CreationFlow) SelectTemplate(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepSelectTemplate {
		return fmt.Errorf("%w: template already selected", domain.ErrValidation)
	}
	tpl, err := f.registry.Get(id)
	if err != nil {
		return err
	}
	f.tpl = tpl
	f.sectionKey = template.SectionKeyFor(tpl.ID, f.now())
	f.title = tpl.Name
	f.description = tpl.Description
	f.step = StepConfigure
	return nil
}

// Back returns to template selection and clears the chosen template.
func (f *CreationFlow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepConfigure {
		return
	}
	f.tpl = nil
	f.sectionKey, f.title, f.description = "", "", ""
	f.step = StepSelectTemplate
}

// SetSectionKey normalizes input to [a-z0-9_] and stores it.
func (f *CreationFlow) SetSectionKey(input string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sectionKey = template.NormalizeKey(input)
	return f.sectionKey
}

// SectionKey returns the current section key.
func (f *CreationFlow) SectionKey() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sectionKey
}

// SetTitle sets the section title.
func (f *CreationFlow) SetTitle(title string) {
	f.mu.Lock()
	f.title = title
	f.mu.Unlock()
}

// Title returns the current title.
func (f *CreationFlow) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

// SetDescription sets the section description.
func (f *CreationFlow) SetDescription(description string) {
	f.mu.Lock()
	f.description = description
	f.mu.Unlock()
}

// CanSubmit reports whether Submit would issue a store call.
func (f *CreationFlow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check() == nil && !f.submitting
}

// Submit creates the section. Incomplete forms are rejected with
// domain.ErrValidation before any store call. A store failure leaves the flow
// at the configure step for a retry; success closes it.
func (f *CreationFlow) Submit(ctx context.Context) (*content.Section, error) {
	f.mu.Lock()
	if err := f.check(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	f.submitting = true
	req := &content.CreateRequest{
		PageKey:     f.pageKey,
		SectionKey:  f.sectionKey,
		Title:       strings.TrimSpace(f.title),
		Description: f.description,
		Content:     template.Instantiate(f.tpl),
		IsActive:    true,
		IsEditable:  true,
	}
	f.mu.Unlock()

	sec, err := f.store.CreateSection(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		return nil, fmt.Errorf("create section %s/%s: %w", req.PageKey, req.SectionKey, err)
	}
	f.step = StepClosed
	return sec, nil
}

// Cancel closes the flow without creating anything.
func (f *CreationFlow) Cancel() {
	f.mu.Lock()
	f.step = StepClosed
	f.mu.Unlock()
}

// check must be called with mu held.
func (f *CreationFlow) check() error {
	switch {
	case f.step == StepClosed:
		return fmt.Errorf("%w: creation flow is closed", domain.ErrValidation)
	case f.step != StepConfigure || f.tpl == nil:
		return fmt.Errorf("%w: no template selected", domain.ErrValidation)
	case strings.TrimSpace(f.title) == "":
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	case f.sectionKey == "":
		return fmt.Errorf("%w: section_key is required", domain.ErrValidation)
	case !content.ValidKey(f.pageKey):
		return fmt.Errorf("%w: page_key %q must match [a-z0-9_]", domain.ErrValidation, f.pageKey)
	}
	return nil
}
