package history

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"folioplan/internal/modules/portfolio"
)

// Handler serves snapshot history and performance statistics.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a history handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("component", "history_handler").Logger(),
	}
}

// HandleHistory handles GET /api/portfolios/{portfolioID}/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.service.History(chi.URLParam(r, "portfolioID"))
	if err != nil {
		h.respondError(w, err, "Failed to load history")
		return
	}

	h.writeJSON(w, http.StatusOK, snapshots)
}

// HandleSnapshot handles POST /api/portfolios/{portfolioID}/snapshot.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")

	if err := h.service.SnapshotNow(portfolioID); err != nil {
		h.respondError(w, err, "Failed to create snapshot")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"message": "Snapshot created"})
}

// HandlePerformance handles GET /api/portfolios/{portfolioID}/performance.
func (h *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.service.Performance(chi.URLParam(r, "portfolioID"))
	if err != nil {
		h.respondError(w, err, "Failed to compute performance")
		return
	}

	h.writeJSON(w, http.StatusOK, perf)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, portfolio.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Portfolio not found")
		return
	}

	h.log.Error().Err(err).Msg(fallback)
	h.writeError(w, http.StatusInternalServerError, fallback)
}

// writeJSON writes a JSON response
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
