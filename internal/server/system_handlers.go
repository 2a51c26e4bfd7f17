package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/etfadvisor/internal/modules/advisor"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/sessions"
	"github.com/aristath/etfadvisor/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves health and runtime status
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	catalog     *catalog.Catalog
	sessions    *sessions.Service
	cache       *advisor.Cache
	scheduler   *scheduler.Scheduler
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(
	log zerolog.Logger,
	cat *catalog.Catalog,
	sessionService *sessions.Service,
	cache *advisor.Cache,
	sched *scheduler.Scheduler,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		catalog:     cat,
		sessions:    sessionService,
		cache:       cache,
		scheduler:   sched,
	}
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status         string   `json:"status"`
	Version        string   `json:"version"`
	UptimeSeconds  int64    `json:"uptime_seconds"`
	CPUPercent     float64  `json:"cpu_percent"`
	MemoryPercent  float64  `json:"memory_percent"`
	Goroutines     int      `json:"goroutines"`
	CatalogSize    int      `json:"catalog_size"`
	ActiveSessions int      `json:"active_sessions"`
	SessionTTL     string   `json:"session_ttl"`
	CacheEnabled   bool     `json:"cache_enabled"`
	CachedAdvice   int      `json:"cached_advice"`
	Jobs           []string `json:"jobs"`
	LastUpdated    string   `json:"last_updated"`
}

// HandleHealth handles GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": Version,
		"service": "etfadvisor",
	})
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.getSystemStats()

	h.writeJSON(w, SystemStatusResponse{
		Status:         "healthy",
		Version:        Version,
		UptimeSeconds:  int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:     cpuPercent,
		MemoryPercent:  memPercent,
		Goroutines:     runtime.NumGoroutine(),
		CatalogSize:    h.catalog.Len(),
		ActiveSessions: h.sessions.Count(),
		SessionTTL:     h.sessions.TTL().String(),
		CacheEnabled:   h.cache.Enabled(),
		CachedAdvice:   h.cache.Len(),
		Jobs:           h.scheduler.Jobs(),
		LastUpdated:    time.Now().Format(time.RFC3339),
	})
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) so the call does not block for long
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	// Get memory statistics (instant, no blocking)
	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
