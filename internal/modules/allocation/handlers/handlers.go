// Package handlers provides HTTP handlers for allocation analysis.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/etfadvisor/internal/domain"
	"github.com/aristath/etfadvisor/internal/modules/allocation"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Handler handles allocation HTTP requests
type Handler struct {
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(cat *catalog.Catalog, log zerolog.Logger) *Handler {
	return &Handler{
		catalog: cat,
		log:     log.With().Str("handler", "allocation").Logger(),
	}
}

// RegisterRoutes registers the allocation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/allocation", func(r chi.Router) {
		r.Get("/groups", h.HandleGetGroups)
		r.Post("/analyze", h.HandleAnalyze)
	})
}

// AnalyzeRequest is an ad-hoc selection with slider values.
// When Tickers is empty the allocated tickers are analysed.
type AnalyzeRequest struct {
	Tickers        []string             `json:"tickers"`
	Allocations    domain.AllocationMap `json:"allocations"`
	PortfolioValue float64              `json:"portfolio_value"`
}

// HandleGetGroups lists the macro groups with the stages they contain
func (h *Handler) HandleGetGroups(w http.ResponseWriter, r *http.Request) {
	groups := make([]map[string]interface{}, 0, len(domain.MacroGroups))
	for _, g := range domain.MacroGroups {
		stages := g.Stages()
		labels := make([]string, len(stages))
		for i, s := range stages {
			labels[i] = s.Label()
		}
		groups = append(groups, map[string]interface{}{
			"group":  g,
			"stages": stages,
			"labels": labels,
		})
	}

	h.writeData(w, http.StatusOK, groups)
}

// HandleAnalyze returns allocation-weighted metrics, totals, group split and narrative
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	allocations, err := normalizeAllocations(req.Allocations)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PortfolioValue < 0 {
		h.writeError(w, http.StatusBadRequest, "Portfolio value must not be negative")
		return
	}
	if req.PortfolioValue == 0 {
		req.PortfolioValue = domain.DefaultPortfolioValue
	}

	tickers := req.Tickers
	if len(tickers) == 0 {
		tickers = allocations.Tickers()
	}

	etfs, err := h.resolve(tickers)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resolved := domain.Tickers(etfs)

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"tickers":          resolved,
		"metrics":          allocation.Compute(etfs, allocations),
		"totals":           allocation.CalculateTotals(resolved, allocations),
		"dollar_amounts":   allocation.DollarAmounts(resolved, allocations, req.PortfolioValue),
		"group_allocation": allocation.CalculateGroupAllocation(etfs, allocations),
		"concentration":    calculateHHI(resolved, allocations),
		"summary":          allocation.Summary(etfs, allocations),
		"insights":         allocation.Insights(etfs, allocations),
	})
}

// resolve looks up each ticker once, preserving request order
func (h *Handler) resolve(tickers []string) ([]domain.ETF, error) {
	seen := make(map[string]bool, len(tickers))
	etfs := make([]domain.ETF, 0, len(tickers))
	for _, t := range tickers {
		etf, err := h.catalog.Get(t)
		if err != nil {
			return nil, err
		}
		if seen[etf.Ticker] {
			continue
		}
		seen[etf.Ticker] = true
		etfs = append(etfs, etf)
	}
	return etfs, nil
}

func normalizeAllocations(in domain.AllocationMap) (domain.AllocationMap, error) {
	out := make(domain.AllocationMap, len(in))
	for ticker, pct := range in {
		out[strings.ToUpper(strings.TrimSpace(ticker))] = pct
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid allocations: %w", err)
	}
	return out, nil
}

// calculateHHI returns the Herfindahl index of the allocation shares, 0 when nothing is allocated
func calculateHHI(tickers []string, allocations domain.AllocationMap) float64 {
	var total float64
	for _, t := range tickers {
		total += allocations.Get(t)
	}
	if total == 0 {
		return 0
	}

	var hhi float64
	for _, t := range tickers {
		share := allocations.Get(t) / total
		hhi += share * share
	}
	return hhi
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
