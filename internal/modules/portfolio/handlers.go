package portfolio

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"folioplan/internal/clients/fmp"
)

// Handler serves portfolio CRUD and quote lookups.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a portfolio handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("component", "portfolio_handler").Logger(),
	}
}

// HandleList handles GET /api/portfolios. Every portfolio is returned fully
// valuated, with live prices and P&L per holding.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListViews()
	if err != nil {
		h.respondError(w, err, "Failed to list portfolios")
		return
	}

	h.writeJSON(w, http.StatusOK, views)
}

type portfolioRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /api/portfolios.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "Portfolio name is required")
		return
	}

	p, err := h.service.Repository().Create(req.Name)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create portfolio")
		h.writeError(w, http.StatusInternalServerError, "Failed to create portfolio")
		return
	}

	h.writeJSON(w, http.StatusCreated, p)
}

// HandleGet handles GET /api/portfolios/{portfolioID}. The response carries
// live prices and P&L for every holding.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Valuate(chi.URLParam(r, "portfolioID"))
	if err != nil {
		h.respondError(w, err, "Failed to load portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

// HandleRename handles PUT /api/portfolios/{portfolioID}.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "Portfolio name is required")
		return
	}

	p, err := h.service.Repository().Rename(chi.URLParam(r, "portfolioID"), req.Name)
	if err != nil {
		h.respondError(w, err, "Failed to rename portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /api/portfolios/{portfolioID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Repository().Delete(chi.URLParam(r, "portfolioID")); err != nil {
		h.respondError(w, err, "Failed to delete portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Portfolio deleted"})
}

type stockRequest struct {
	Ticker       string  `json:"ticker"`
	Shares       float64 `json:"shares"`
	AveragePrice float64 `json:"average_price"`
}

// HandleAddStock handles POST /api/portfolios/{portfolioID}/stocks.
func (h *Handler) HandleAddStock(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	switch {
	case req.Ticker == "":
		h.writeError(w, http.StatusBadRequest, "Ticker is required")
		return
	case req.Shares <= 0:
		h.writeError(w, http.StatusBadRequest, "Shares must be greater than zero")
		return
	case req.AveragePrice <= 0:
		h.writeError(w, http.StatusBadRequest, "Average price must be greater than zero")
		return
	}

	stock, err := h.service.AddStock(chi.URLParam(r, "portfolioID"), req.Ticker, req.Shares, req.AveragePrice)
	if err != nil {
		h.respondError(w, err, "Failed to add stock")
		return
	}

	h.writeJSON(w, http.StatusCreated, stock)
}

// HandleDeleteStock handles DELETE /api/portfolios/{portfolioID}/stocks/{stockID}.
func (h *Handler) HandleDeleteStock(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")
	stockID := chi.URLParam(r, "stockID")

	if err := h.service.Repository().DeleteStock(portfolioID, stockID); err != nil {
		h.respondError(w, err, "Failed to delete stock")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Stock deleted"})
}

// HandleGetPrice handles GET /api/stocks/{ticker}/price.
func (h *Handler) HandleGetPrice(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	prices, err := h.service.quotes.GetQuotes([]string{ticker})
	if err != nil {
		h.respondError(w, err, "Failed to fetch price")
		return
	}

	price, ok := prices[ticker]
	if !ok {
		h.writeError(w, http.StatusNotFound, "Price not found for "+ticker)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ticker": ticker,
		"price":  price,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		h.writeError(w, http.StatusNotFound, "Portfolio not found")
	case errors.Is(err, ErrStockNotFound):
		h.writeError(w, http.StatusNotFound, "Stock not found")
	case errors.Is(err, ErrStockMismatch):
		h.writeError(w, http.StatusBadRequest, "Stock does not belong to this portfolio")
	case errors.Is(err, ErrUnknownTicker):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fmp.ErrRateLimited):
		h.writeError(w, http.StatusTooManyRequests, "API rate limit reached. Please try again later.")
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
