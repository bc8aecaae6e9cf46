package sentiment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"folioplan/internal/modules/portfolio"
)

// Handler serves news sentiment endpoints.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a sentiment handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("component", "sentiment_handler").Logger(),
	}
}

// HandleTickerSentiment handles GET /api/stocks/{ticker}/news-sentiment.
// An optional limit query parameter caps the number of scored articles.
func (h *Handler) HandleTickerSentiment(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	result, err := h.service.TickerSentiment(ticker, limit)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to score ticker sentiment")
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch news sentiment")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandlePortfolioSentiment handles GET /api/portfolios/{portfolioID}/news-sentiment.
func (h *Handler) HandlePortfolioSentiment(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")

	result, err := h.service.PortfolioSentiment(portfolioID)
	if err != nil {
		if errors.Is(err, portfolio.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Portfolio not found")
			return
		}
		h.log.Error().Err(err).Str("portfolio_id", portfolioID).Msg("Failed to score portfolio sentiment")
		h.writeError(w, http.StatusInternalServerError, "Failed to fetch news sentiment")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
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
