package http

import (
	"context"
	"net/http"
	"time"

	cfotel "github.com/Strob0t/folio/internal/adapter/otel"
	"github.com/Strob0t/folio/internal/domain/content"
	"github.com/Strob0t/folio/internal/domain/style"
	"github.com/Strob0t/folio/internal/domain/template"
	"github.com/Strob0t/folio/internal/logger"
	"github.com/Strob0t/folio/internal/service"
)

// Handlers holds the dependencies of the HTTP API.
type Handlers struct {
	Sections  *service.SectionService
	Templates *template.Registry
	Version   string

	// HealthChecks are run by /health; a failing check turns the response
	// into 503 and is reported under its name.
	HealthChecks map[string]func(ctx context.Context) error

	// Now derives section keys for instantiated templates. Defaults to time.Now.
	Now func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// --- Sections ---

// ListSections handles GET /api/v1/sections?page_key=
func (h *Handlers) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.Sections.List(r.Context(), r.URL.Query().Get("page_key"))
	if err != nil {
		writeDomainError(w, err, "sections not found")
		return
	}
	if sections == nil {
		sections = []content.Section{}
	}
	writeJSON(w, http.StatusOK, sections)
}

// GetSection handles GET /api/v1/sections/{page_key}/{section_key}
func (h *Handlers) GetSection(w http.ResponseWriter, r *http.Request) {
	ctx, pageKey, sectionKey := sectionParams(r)
	sec, err := h.Sections.Get(ctx, pageKey, sectionKey)
	if err != nil {
		writeDomainError(w, err, "section not found")
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

// CreateSection handles POST /api/v1/sections
func (h *Handlers) CreateSection(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[content.CreateRequest](w, r)
	if !ok {
		return
	}
	ctx := logger.WithSection(r.Context(), req.PageKey, req.SectionKey)
	sec, err := h.Sections.Create(ctx, &req)
	if err != nil {
		writeDomainError(w, err, "creation failed")
		return
	}
	writeJSON(w, http.StatusCreated, sec)
}

// UpdateSection handles PUT /api/v1/sections/{page_key}/{section_key}
func (h *Handlers) UpdateSection(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[content.UpdateRequest](w, r)
	if !ok {
		return
	}
	ctx, pageKey, sectionKey := sectionParams(r)
	sec, err := h.Sections.Update(ctx, pageKey, sectionKey, &req)
	if err != nil {
		writeDomainError(w, err, "section not found")
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

// DeleteSection handles DELETE /api/v1/sections/{page_key}/{section_key}
func (h *Handlers) DeleteSection(w http.ResponseWriter, r *http.Request) {
	ctx, pageKey, sectionKey := sectionParams(r)
	if err := h.Sections.Delete(ctx, pageKey, sectionKey); err != nil {
		writeDomainError(w, err, "section not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SectionFields handles GET /api/v1/sections/{page_key}/{section_key}/fields
func (h *Handlers) SectionFields(w http.ResponseWriter, r *http.Request) {
	ctx, pageKey, sectionKey := sectionParams(r)
	views, err := h.Sections.Fields(ctx, pageKey, sectionKey)
	if err != nil {
		writeDomainError(w, err, "section not found")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// --- Templates ---

// ListTemplates handles GET /api/v1/templates
func (h *Handlers) ListTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Templates.List())
}

// GetTemplate handles GET /api/v1/templates/{id}
func (h *Handlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Templates.Get(urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

type instantiateResponse struct {
	TemplateID string          `json:"template_id"`
	SectionKey string          `json:"section_key"`
	Content    content.Content `json:"content"`
}

// InstantiateTemplate handles POST /api/v1/templates/{id}/instantiate. It
// returns the default content and a freshly derived section key without
// storing anything.
func (h *Handlers) InstantiateTemplate(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	_, span := cfotel.StartTemplateSpan(r.Context(), id)

	tpl, err := h.Templates.Get(id)
	cfotel.EndSpan(span, err)
	if err != nil {
		writeDomainError(w, err, "template not found")
		return
	}
	writeJSON(w, http.StatusOK, instantiateResponse{
		TemplateID: tpl.ID,
		SectionKey: template.SectionKeyFor(tpl.ID, h.now()),
		Content:    template.Instantiate(tpl),
	})
}

// --- Styles ---

type styleRequest struct {
	Selection *style.Selection `json:"selection,omitempty"`
	Changes   style.Changes    `json:"changes"`
}

type styleResponse struct {
	Selection style.Selection `json:"selection"`
	Payload   style.Payload   `json:"payload"`
	Content   map[string]any  `json:"content"`
}

// ApplyStyle handles POST /api/v1/styles
func (h *Handlers) ApplyStyle(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[styleRequest](w, r)
	if !ok {
		return
	}
	sel := style.Default
	if req.Selection != nil {
		sel = *req.Selection
	}
	sel, payload, err := style.Apply(sel, req.Changes)
	if err != nil {
		writeDomainError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, styleResponse{Selection: sel, Payload: payload, Content: payload.AsContent(sel)})
}

// StyleChoices handles GET /api/v1/styles
func (h *Handlers) StyleChoices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": style.Default,
		"choices": style.Choices(),
	})
}

// --- Health ---

type healthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Health handles GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := healthStatus{Status: "ok", Version: h.Version}
	code := http.StatusOK

	if len(h.HealthChecks) > 0 {
		status.Checks = make(map[string]string, len(h.HealthChecks))
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for name, check := range h.HealthChecks {
			if err := check(ctx); err != nil {
				status.Checks[name] = err.Error()
				status.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status.Checks[name] = "ok"
		}
	}
	writeJSON(w, code, status)
}
