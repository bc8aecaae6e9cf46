package strategy

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"folioplan/internal/modules/portfolio"
)

// Handler serves strategy reads and writes.
type Handler struct {
	repo       *Repository
	portfolios *portfolio.Repository
	log        zerolog.Logger
}

// NewHandler creates a strategy handler.
func NewHandler(repo *Repository, portfolios *portfolio.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo:       repo,
		portfolios: portfolios,
		log:        log.With().Str("component", "strategy_handler").Logger(),
	}
}

// HandleGet handles GET /api/portfolios/{portfolioID}/strategy.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")

	if _, err := h.portfolios.Get(portfolioID); err != nil {
		h.respondError(w, err, "Failed to load strategy")
		return
	}

	strat, err := h.repo.Get(portfolioID)
	if err != nil {
		h.respondError(w, err, "Failed to load strategy")
		return
	}

	h.writeJSON(w, http.StatusOK, strat)
}

type strategyRequest struct {
	Allocations []Allocation `json:"allocations"`
}

// HandleReplace handles POST /api/portfolios/{portfolioID}/strategy. The
// stored strategy is replaced wholesale; there is no partial update.
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")

	if _, err := h.portfolios.Get(portfolioID); err != nil {
		h.respondError(w, err, "Failed to save strategy")
		return
	}

	var req strategyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	for i := range req.Allocations {
		req.Allocations[i].Ticker = strings.ToUpper(strings.TrimSpace(req.Allocations[i].Ticker))
	}

	if err := ValidateAllocations(req.Allocations); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	strat, err := h.repo.Replace(portfolioID, req.Allocations)
	if err != nil {
		h.respondError(w, err, "Failed to save strategy")
		return
	}

	h.writeJSON(w, http.StatusOK, strat)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, portfolio.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Portfolio not found")
	case errors.Is(err, ErrNotFound):
		h.writeError(w, http.StatusNotFound, "No strategy defined for this portfolio")
	default:
		h.log.Error().Err(err).Msg(fallback)
		h.writeError(w, http.StatusInternalServerError, fallback)
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

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
