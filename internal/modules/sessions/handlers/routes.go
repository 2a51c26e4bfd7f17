package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all session routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
			r.Get("/advice", h.HandleGetAdvice)
			r.Get("/stream", h.HandleStream)

			r.Put("/preferences", h.HandleSetPreferences)
			r.Put("/weights", h.HandleSetWeights)
			r.Put("/knowledge", h.HandleSetKnowledge)
			r.Put("/portfolio-value", h.HandleSetPortfolioValue)
			r.Put("/allocations/{ticker}", h.HandleSetAllocation)
			r.Post("/scenario/{name}", h.HandleApplyScenario)
		})
	})
}
