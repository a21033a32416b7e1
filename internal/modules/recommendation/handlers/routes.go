package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all pricing routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pricing", func(r chi.Router) {
		r.Post("/recommendations", h.HandleRecommendations)
		r.Post("/analysis", h.HandleAnalysis)
		r.Post("/optimize", h.HandleOptimize)
		r.Get("/strategies", h.HandleStrategies)
	})
}
