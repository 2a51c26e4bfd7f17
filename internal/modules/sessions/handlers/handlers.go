// Package handlers provides HTTP handlers for advisor sessions.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/events"
	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/internal/modules/scenarios"
	"github.com/aristath/etfadvisor/internal/modules/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles session HTTP requests
type Handler struct {
	service        *sessions.Service
	bus            *events.Bus
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new session handler. originPatterns are the hosts
// allowed to open the websocket stream cross-origin.
func NewHandler(
	service *sessions.Service,
	bus *events.Bus,
	originPatterns []string,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:        service,
		bus:            bus,
		originPatterns: originPatterns,
		log:            log.With().Str("handler", "sessions").Logger(),
	}
}

// HandleCreate handles POST /api/sessions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var opts sessions.CreateOptions
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	session, err := h.service.Create(opts)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeData(w, http.StatusCreated, session)
}

// HandleGet handles GET /api/sessions/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, session)
}

// HandleDelete handles DELETE /api/sessions/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetAdvice handles GET /api/sessions/{id}/advice
func (h *Handler) HandleGetAdvice(w http.ResponseWriter, r *http.Request) {
	advice, err := h.service.Advice(chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, advice)
}

// HandleSetPreferences handles PUT /api/sessions/{id}/preferences
func (h *Handler) HandleSetPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs domain.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.SetPreferences(chi.URLParam(r, "id"), prefs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, session)
}

// HandleSetWeights handles PUT /api/sessions/{id}/weights
func (h *Handler) HandleSetWeights(w http.ResponseWriter, r *http.Request) {
	var weights domain.Weights
	if err := json.NewDecoder(r.Body).Decode(&weights); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.SetWeights(chi.URLParam(r, "id"), weights)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, session)
}

// HandleSetKnowledge handles PUT /api/sessions/{id}/knowledge
func (h *Handler) HandleSetKnowledge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level string `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.SetKnowledge(chi.URLParam(r, "id"), body.Level)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, session)
}

// HandleSetPortfolioValue handles PUT /api/sessions/{id}/portfolio-value
func (h *Handler) HandleSetPortfolioValue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.service.SetPortfolioValue(chi.URLParam(r, "id"), body.Value)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, session)
}

// HandleSetAllocation handles PUT /api/sessions/{id}/allocations/{ticker}
func (h *Handler) HandleSetAllocation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pct *float64 `json:"pct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Pct == nil {
		h.writeError(w, http.StatusBadRequest, "Request body must contain pct")
		return
	}

	session, err := h.service.SetAllocation(chi.URLParam(r, "id"), chi.URLParam(r, "ticker"), *body.Pct)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, session)
}

// HandleApplyScenario handles POST /api/sessions/{id}/scenario/{name}
func (h *Handler) HandleApplyScenario(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.ApplyScenario(chi.URLParam(r, "id"), chi.URLParam(r, "name"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, session)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessions.ErrSessionNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, scenarios.ErrUnknownScenario):
		h.writeError(w, http.StatusNotFound, err.Error())
	case domain.IsValidation(err),
		errors.Is(err, display.ErrUnknownKnowledgeLevel),
		errors.Is(err, baskets.ErrUnknownPolicy),
		errors.Is(err, sessions.ErrInvalidPortfolioValue):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Session operation failed")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
