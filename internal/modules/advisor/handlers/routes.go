package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all advisor routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.HandleGetCatalog)
	r.Get("/scenarios", h.HandleGetScenarios)

	r.Route("/knowledge-modes", func(r chi.Router) {
		r.Get("/", h.HandleGetKnowledgeModes)
		r.Put("/default", h.HandleSetDefaultKnowledgeMode)
	})

	r.Post("/advice", h.HandleAdvice)
}
