// Package handlers provides HTTP handlers for the per-ETF scoring API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/scoring"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Handlers provides HTTP handlers for scoring module
type Handlers struct {
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// NewHandlers creates a new scoring handlers instance
func NewHandlers(cat *catalog.Catalog, log zerolog.Logger) *Handlers {
	return &Handlers{
		catalog: cat,
		log:     log.With().Str("module", "scoring_handlers").Logger(),
	}
}

// ScoreRequest represents a request to score one ETF.
// Missing preferences and weights fall back to the defaults.
type ScoreRequest struct {
	Ticker      string              `json:"ticker"`
	Preferences *domain.Preferences `json:"preferences,omitempty"`
	Weights     *domain.Weights     `json:"weights,omitempty"`
}

// WhatIfRequest scores the whole catalog under custom inputs
type WhatIfRequest struct {
	Preferences *domain.Preferences `json:"preferences,omitempty"`
	Weights     *domain.Weights     `json:"weights,omitempty"`
	Limit       int                 `json:"limit,omitempty"`
}

// HandleScoreETF handles POST /api/scoring/score
func (h *Handlers) HandleScoreETF(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.log.Debug().Err(err).Msg("Failed to decode score request")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Ticker) == "" {
		h.writeError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	prefs, weights, err := resolveInputs(req.Preferences, req.Weights)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeScore(w, req.Ticker, prefs, weights)
}

// HandleGetScoreComponents handles GET /api/scoring/components/{ticker}
// using the default preferences and weights
func (h *Handlers) HandleGetScoreComponents(w http.ResponseWriter, r *http.Request) {
	h.writeScore(w, chi.URLParam(r, "ticker"), domain.DefaultPreferences(), domain.DefaultWeights())
}

// HandleGetAllScoreComponents handles GET /api/scoring/components/all.
// Every ETF is scored in catalog order without filtering.
func (h *Handlers) HandleGetAllScoreComponents(w http.ResponseWriter, r *http.Request) {
	scored := scoring.ScoreAll(h.catalog.All(), domain.DefaultPreferences(), domain.DefaultWeights())
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"etfs":  scored,
		"count": len(scored),
	})
}

// HandleGetCurrentWeights handles GET /api/scoring/weights/current
func (h *Handlers) HandleGetCurrentWeights(w http.ResponseWriter, r *http.Request) {
	weights := domain.DefaultWeights()
	keys := make([]string, len(domain.WeightKeys))
	for i, k := range domain.WeightKeys {
		keys[i] = string(k)
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"default_weights": weights,
		"keys":            keys,
		"min":             domain.MinWeight,
		"max":             domain.MaxWeight,
		"max_possible":    weights.Sum(),
	})
}

// HandleWhatIfScore handles POST /api/scoring/score/what-if.
// It filters and ranks the catalog without the knowledge-mode cut.
func (h *Handlers) HandleWhatIfScore(w http.ResponseWriter, r *http.Request) {
	var req WhatIfRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Limit < 0 {
		h.writeError(w, http.StatusBadRequest, "Limit must not be negative")
		return
	}

	prefs, weights, err := resolveInputs(req.Preferences, req.Weights)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ranked := scoring.Rank(h.catalog.All(), prefs, weights, req.Limit)
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"etfs":         ranked,
		"count":        len(ranked),
		"max_possible": weights.Sum(),
	})
}

func (h *Handlers) writeScore(w http.ResponseWriter, ticker string, prefs domain.Preferences, weights domain.Weights) {
	etf, err := h.catalog.Get(ticker)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	bd := scoring.BreakdownETF(etf, prefs, weights)
	components := make(map[string]float64, len(domain.WeightKeys))
	for k, v := range bd.Components() {
		components[string(k)] = v
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"etf":        etf,
		"breakdown":  bd,
		"components": components,
	})
}

func resolveInputs(p *domain.Preferences, wt *domain.Weights) (domain.Preferences, domain.Weights, error) {
	prefs := domain.DefaultPreferences()
	if p != nil {
		prefs = p.Clone()
		if prefs.ChinaComfort == "" {
			prefs.ChinaComfort = domain.ComfortNeutral
		}
		if prefs.RiskTolerance == "" {
			prefs.RiskTolerance = domain.RiskMedium
		}
	}
	if err := prefs.Validate(); err != nil {
		return prefs, domain.Weights{}, err
	}

	weights := domain.DefaultWeights()
	if wt != nil {
		weights = *wt
	}
	if err := weights.Validate(); err != nil {
		return prefs, weights, err
	}
	return prefs, weights, nil
}

func (h *Handlers) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response with status code
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
