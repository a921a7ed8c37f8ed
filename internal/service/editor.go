package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Strob0t/folio/internal/domain"
	"github.com/Strob0t/folio/internal/domain/content"
	"github.com/Strob0t/folio/internal/domain/style"
	"github.com/Strob0t/folio/internal/port/contentstore"
)

// EditorState is the lifecycle state of an EditorSession.
type EditorState string

const (
	EditorLoading EditorState = "loading"
	EditorReady   EditorState = "ready"
	EditorSaving  EditorState = "saving"
	EditorClosed  EditorState = "closed"
)

var (
	// ErrBusy is returned when a load or save is already in flight.
	ErrBusy = errors.New("another request is in flight")

	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("editor session is closed")
)

// NotFoundError closes a session whose section has never been created. The
// caller should offer the creation flow instead.
type NotFoundError struct {
	Ref content.Ref
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("section %s has not been created yet; create it from a template first", e.Ref)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// EditorSession holds the draft of one section while an operator edits it.
// Every mutation replaces the draft with a copy-on-write successor, so the
// content that was last loaded or saved is never modified.
type EditorSession struct {
	store contentstore.Store
	ref   content.Ref

	mu       sync.Mutex
	state    EditorState
	inflight bool
	section  content.Section
	draft    content.Content
	saved    content.Content
	// opaque holds unparsable text typed into opaque-object fields.
	opaque map[string]string
	err    error
}

// NewEditorSession creates a session in the loading state. Call Open to
// fetch the section.
func NewEditorSession(store contentstore.Store, pageKey, sectionKey string) *EditorSession {
	return &EditorSession{
		store:  store,
		ref:    content.Ref{PageKey: pageKey, SectionKey: sectionKey},
		state:  EditorLoading,
		opaque: make(map[string]string),
	}
}

// Ref returns the identity of the edited section.
func (e *EditorSession) Ref() content.Ref { return e.ref }

// State returns the current lifecycle state.
func (e *EditorSession) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Err returns the error that closed the session, if any.
func (e *EditorSession) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Open loads the persisted section. A missing section closes the session
// with a *NotFoundError; any other failure closes it with the wrapped error.
func (e *EditorSession) Open(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.state == EditorClosed:
		e.mu.Unlock()
		return ErrClosed
	case e.state != EditorLoading || e.inflight:
		e.mu.Unlock()
		return ErrBusy
	}
	e.inflight = true
	e.mu.Unlock()

	sec, err := e.store.GetSection(ctx, e.ref.PageKey, e.ref.SectionKey)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.inflight = false

	if e.state == EditorClosed {
		return ErrClosed
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = &NotFoundError{Ref: e.ref, Err: err}
		} else {
			err = fmt.Errorf("load section %s: %w", e.ref, err)
		}
		e.state = EditorClosed
		e.err = err
		return err
	}

	e.section = *sec
	e.section.Content = nil
	loaded := sec.Content
	if loaded == nil {
		loaded = content.Content{}
	}
	e.saved = content.Clone(loaded)
	e.draft = e.saved
	e.state = EditorReady
	return nil
}

// Section returns the section metadata as last loaded or saved. Its Content
// is the current draft.
func (e *EditorSession) Section() content.Section {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.section
	s.Content = content.Clone(e.draft)
	return s
}

// Draft returns a deep copy of the current draft.
func (e *EditorSession) Draft() content.Content {
	e.mu.Lock()
	defer e.mu.Unlock()
	return content.Clone(e.draft)
}

// Fields describes every draft field. Opaque fields holding unparsable text
// report that text instead of the serialized draft value.
func (e *EditorSession) Fields() []content.FieldView {
	e.mu.Lock()
	defer e.mu.Unlock()

	views := content.Describe(e.draft)
	for i := range views {
		if text, ok := e.opaque[views[i].Key]; ok {
			views[i].Text = text
		}
	}
	return views
}

// Value returns a deep copy of the draft value under key.
func (e *EditorSession) Value(key string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.draft[key]
	return content.CloneValue(v), ok
}

// SetScalar sets a scalar field. A field that holds an array or object
// keeps its shape; those go through the list and JSON operations.
func (e *EditorSession) SetScalar(key string, v any) error {
	if !content.IsScalar(v) {
		return fmt.Errorf("%w: %q expects a scalar, got %T", domain.ErrValidation, key, v)
	}
	return e.mutate(func(c content.Content) (content.Content, error) {
		if cur, ok := c[key]; ok && !content.IsScalar(cur) {
			return nil, fmt.Errorf("%w: %q holds %T, not a scalar", domain.ErrValidation, key, cur)
		}
		return content.Set(c, key, v), nil
	})
}

// AddItem appends a value to a primitive array.
func (e *EditorSession) AddItem(key string, v any) error {
	return e.mutate(func(c content.Content) (content.Content, error) {
		return content.AppendItem(c, key, v)
	})
}

// AddObjectItem appends a blank item to an object array and returns it.
func (e *EditorSession) AddObjectItem(key string) (map[string]any, error) {
	var item map[string]any
	err := e.mutate(func(c content.Content) (content.Content, error) {
		next, it, err := content.AppendObjectItem(c, key)
		item = it
		return next, err
	})
	if err != nil {
		return nil, err
	}
	return content.CloneValue(item).(map[string]any), nil
}

// UpdateItem replaces element i of an array.
func (e *EditorSession) UpdateItem(key string, i int, v any) error {
	return e.mutate(func(c content.Content) (content.Content, error) {
		return content.ReplaceItem(c, key, i, v)
	})
}

// UpdateItemField sets one field of the object at position i of an array.
func (e *EditorSession) UpdateItemField(key string, i int, field string, v any) error {
	return e.mutate(func(c content.Content) (content.Content, error) {
		return content.ReplaceItemField(c, key, i, field, v)
	})
}

// RemoveItem deletes element i of an array.
func (e *EditorSession) RemoveItem(key string, i int) error {
	return e.mutate(func(c content.Content) (content.Content, error) {
		return content.RemoveItem(c, key, i)
	})
}

// EditOpaqueText records text typed into an opaque-object field. The draft
// only changes when text parses as JSON; otherwise the text is kept for
// display and the parse error is returned.
func (e *EditorSession) EditOpaqueText(key, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.editable(); err != nil {
		return err
	}
	v, err := content.ParseJSONText(text)
	if err != nil {
		e.opaque[key] = text
		return err
	}
	delete(e.opaque, key)
	e.draft = content.Set(e.draft, key, v)
	return nil
}

// OpaqueText returns the text shown for an opaque-object field.
func (e *EditorSession) OpaqueText(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if text, ok := e.opaque[key]; ok {
		return text
	}
	return content.FormatJSON(e.draft[key])
}

// ApplyStyle merges style changes into the style object stored under key.
func (e *EditorSession) ApplyStyle(key string, changes style.Changes) (style.Payload, error) {
	var payload style.Payload
	err := e.mutate(func(c content.Content) (content.Content, error) {
		sel, p, err := style.Apply(style.SelectionFrom(c[key]), changes)
		if err != nil {
			return nil, err
		}
		payload = p
		return content.Set(c, key, p.AsContent(sel)), nil
	})
	return payload, err
}

// Dirty reports whether the draft differs from the persisted content.
func (e *EditorSession) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !content.Equal(e.draft, e.saved)
}

// Save persists the full draft. On failure the draft is kept and the session
// returns to ready so the operator can retry. Last writer wins.
func (e *EditorSession) Save(ctx context.Context) (*content.Section, error) {
	e.mu.Lock()
	switch {
	case e.state == EditorClosed:
		e.mu.Unlock()
		return nil, ErrClosed
	case e.state != EditorReady:
		e.mu.Unlock()
		return nil, ErrBusy
	}
	if err := e.editable(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	snapshot := e.draft
	e.state = EditorSaving
	e.mu.Unlock()

	sec, err := e.store.UpdateSection(ctx, e.ref.PageKey, e.ref.SectionKey, &content.UpdateRequest{Content: snapshot})

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == EditorClosed {
		slog.DebugContext(ctx, "discarding save result of closed editor", "section", e.ref.String())
		return sec, err
	}
	e.state = EditorReady
	if err != nil {
		return nil, fmt.Errorf("save section %s: %w", e.ref, err)
	}

	e.saved = snapshot
	e.section = *sec
	e.section.Content = nil
	return sec, nil
}

// Close ends the session. A save in flight still completes.
func (e *EditorSession) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = EditorClosed
}

// mutate replaces the draft with the result of fn. Edits are accepted while
// a save is in flight; the save sends the draft as it was when it started.
func (e *EditorSession) mutate(fn func(content.Content) (content.Content, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.editable(); err != nil {
		return err
	}
	next, err := fn(e.draft)
	if err != nil {
		return err
	}
	e.draft = next
	return nil
}

// editable must be called with mu held.
func (e *EditorSession) editable() error {
	switch e.state {
	case EditorClosed:
		return ErrClosed
	case EditorLoading:
		return fmt.Errorf("%w: section %s is not loaded", ErrBusy, e.ref)
	}
	if !e.section.IsEditable {
		return fmt.Errorf("section %s: %w", e.ref, domain.ErrReadOnly)
	}
	return nil
}
