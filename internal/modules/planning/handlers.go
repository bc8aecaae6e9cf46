package planning

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"folioplan/internal/clients/fmp"
	"folioplan/internal/modules/portfolio"
)

// Handler serves recommendation requests.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a planning handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("component", "planning_handler").Logger(),
	}
}

type recommendationsRequest struct {
	AvailableCash float64 `json:"available_cash"`
}

// HandleRecommendations handles POST /api/portfolios/{portfolioID}/recommendations.
func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")

	// An empty body means plan with zero cash.
	var req recommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.AvailableCash < 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid available_cash")
		return
	}

	plan, err := h.service.BuildPlan(portfolioID, req.AvailableCash)
	if err != nil {
		h.respondPlanError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) respondPlanError(w http.ResponseWriter, err error) {
	var missing *MissingPriceDataError
	var upstream *fmp.UpstreamError

	switch {
	case errors.Is(err, portfolio.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Portfolio not found")
	case errors.Is(err, ErrNoStrategy):
		h.writeError(w, http.StatusNotFound, "No strategy defined for this portfolio")
	case errors.Is(err, fmp.ErrRateLimited):
		h.writeError(w, http.StatusTooManyRequests, "API rate limit reached. Please try again later.")
	case errors.As(err, &missing):
		h.writeTypedError(w, http.StatusInternalServerError, "Failed to generate recommendations", missing.Error(), "api_error")
	case errors.As(err, &upstream):
		h.log.Error().Err(err).Msg("Upstream failure during plan computation")
		h.writeTypedError(w, http.StatusInternalServerError, "Failed to generate recommendations", upstream.Error(), upstream.Kind)
	default:
		h.log.Error().Err(err).Msg("Failed to generate recommendations")
		h.writeTypedError(w, http.StatusInternalServerError, "Failed to generate recommendations", err.Error(), "unexpected_error")
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

func (h *Handler) writeTypedError(w http.ResponseWriter, status int, message, details, errType string) {
	h.writeJSON(w, status, map[string]string{
		"error":   message,
		"details": details,
		"type":    errType,
	})
}
