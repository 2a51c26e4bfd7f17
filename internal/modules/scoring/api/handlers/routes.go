package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all scoring routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/scoring", func(r chi.Router) {
		r.Post("/score", h.HandleScoreETF)            // Score one ETF
		r.Post("/score/what-if", h.HandleWhatIfScore) // Rank the catalog with custom inputs

		r.Route("/components", func(r chi.Router) {
			r.Get("/all", h.HandleGetAllScoreComponents) // Every ETF, default inputs
			r.Get("/{ticker}", h.HandleGetScoreComponents)
		})

		r.Get("/weights/current", h.HandleGetCurrentWeights)
	})
}
