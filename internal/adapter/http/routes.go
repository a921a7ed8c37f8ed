package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/folio/internal/middleware"
)

// MountRoutes registers all API routes on the given chi router. Section
// writes require the admin token when adminTokenHash is set; template and
// style routes never touch the store and stay open.
func MountRoutes(r chi.Router, h *Handlers, adminTokenHash func() string) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": h.Version})
		})

		// Sections
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminToken(adminTokenHash))

			r.Get("/sections", h.ListSections)
			r.Post("/sections", h.CreateSection)
			r.Get("/sections/{page_key}/{section_key}", h.GetSection)
			r.Put("/sections/{page_key}/{section_key}", h.UpdateSection)
			r.Delete("/sections/{page_key}/{section_key}", h.DeleteSection)
			r.Get("/sections/{page_key}/{section_key}/fields", h.SectionFields)
		})

		// Templates
		r.Get("/templates", h.ListTemplates)
		r.Get("/templates/{id}", h.GetTemplate)
		r.Post("/templates/{id}/instantiate", h.InstantiateTemplate)

		// Styles
		r.Get("/styles", h.StyleChoices)
		r.Post("/styles", h.ApplyStyle)
	})
}
