package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"folioplan/internal/database"
)

// SystemHandlers serves process and database health endpoints.
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	databases   []*database.DB
}

// NewSystemHandlers creates system handlers.
func NewSystemHandlers(log zerolog.Logger, databases []*database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		startupTime: time.Now(),
		databases:   databases,
	}
}

// HandleSystemStatus handles GET /api/system/status.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startupTime).Seconds()),
		"cpu_percent":    cpuPercent,
		"memory_percent": memPercent,
		"goroutines":     runtime.NumGoroutine(),
		"go_version":     runtime.Version(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleDatabaseStats handles GET /api/system/database/stats.
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]interface{}, len(h.databases))
	for _, db := range h.databases {
		dbStats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to collect database stats")
			stats[db.Name()] = map[string]string{"error": err.Error()}
			continue
		}
		stats[db.Name()] = dbStats
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// getSystemStats returns CPU and RAM usage percentages. The 100ms CPU sample
// keeps the endpoint fast enough for dashboard polling.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

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
