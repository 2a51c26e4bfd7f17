// Package handlers provides HTTP handlers for the stateless advisor API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/modules/advisor"
	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/internal/modules/scenarios"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ContentTypeMsgpack selects a msgpack body in Content-Type and Accept headers
const ContentTypeMsgpack = "application/msgpack"

// maxBodyBytes bounds advice request bodies
const maxBodyBytes = 1 << 20

// Handler handles advisor HTTP requests
type Handler struct {
	service *advisor.Service
	modes   *display.ModeManager
	log     zerolog.Logger
}

// NewHandler creates a new advisor handler
func NewHandler(
	service *advisor.Service,
	modes *display.ModeManager,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service: service,
		modes:   modes,
		log:     log.With().Str("handler", "advisor").Logger(),
	}
}

type stageInfo struct {
	ID    domain.Stage      `json:"id"`
	Label string            `json:"label"`
	Group domain.MacroGroup `json:"group"`
}

// HandleGetCatalog handles GET /api/catalog
func (h *Handler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	stages := make([]stageInfo, len(domain.AllStages))
	for i, s := range domain.AllStages {
		stages[i] = stageInfo{ID: s, Label: s.Label(), Group: domain.GroupOf(s)}
	}

	h.writeData(w, r, http.StatusOK, map[string]interface{}{
		"etfs":   h.service.Catalog().All(),
		"count":  h.service.Catalog().Len(),
		"stages": stages,
	})
}

// HandleGetScenarios handles GET /api/scenarios
func (h *Handler) HandleGetScenarios(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, r, http.StatusOK, scenarios.All())
}

// HandleGetKnowledgeModes handles GET /api/knowledge-modes
func (h *Handler) HandleGetKnowledgeModes(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, r, http.StatusOK, map[string]interface{}{
		"modes":   display.All(),
		"default": h.modes.GetLevel(),
	})
}

// HandleSetDefaultKnowledgeMode handles PUT /api/knowledge-modes/default
func (h *Handler) HandleSetDefaultKnowledgeMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level string `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.modes.SetLevelString(body.Level); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeData(w, r, http.StatusOK, h.modes.GetMode())
}

// HandleAdvice handles POST /api/advice.
// Fields omitted from the body keep their defaults. The body may be JSON or
// msgpack; the response is msgpack when the client accepts it.
func (h *Handler) HandleAdvice(w http.ResponseWriter, r *http.Request) {
	req := advisor.DefaultRequest()

	if r.ContentLength != 0 {
		body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var err error
		if isMsgpack(r.Header.Get("Content-Type")) {
			err = msgpack.NewDecoder(body).Decode(&req)
		} else {
			err = json.NewDecoder(body).Decode(&req)
		}
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	advice, err := h.service.Advise(req, advisor.OriginAPI)
	if err != nil {
		if isBadRequest(err) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to compute advice")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeData(w, r, http.StatusOK, advice)
}

func isBadRequest(err error) bool {
	return domain.IsValidation(err) ||
		errors.Is(err, display.ErrUnknownKnowledgeLevel) ||
		errors.Is(err, baskets.ErrUnknownPolicy)
}

func isMsgpack(header string) bool {
	return strings.Contains(header, ContentTypeMsgpack) || strings.Contains(header, "application/x-msgpack")
}

func (h *Handler) writeData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	if isMsgpack(r.Header.Get("Accept")) {
		h.writeMsgpack(w, status, response)
		return
	}
	h.writeJSON(w, status, response)
}

// writeMsgpack writes a msgpack response
func (h *Handler) writeMsgpack(w http.ResponseWriter, status int, data interface{}) {
	encoded, err := msgpack.Marshal(data)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to encode msgpack response")
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", ContentTypeMsgpack)
	w.WriteHeader(status)
	if _, err := w.Write(encoded); err != nil {
		h.log.Error().Err(err).Msg("Failed to write msgpack response")
	}
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
