// Package fmp provides quote and historical price fetching from
// financialmodelingprep.com with persistent caching.
package fmp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"folioplan/internal/cache"
	"folioplan/pkg/formulas"
)

const defaultBaseURL = "https://financialmodelingprep.com/api/v3"

// Trailing-high windows in calendar days.
const (
	weeklyWindowDays  = 7
	monthlyWindowDays = 30
	yearlyWindowDays  = 365
)

// ErrRateLimited is returned when the upstream API reports plan exhaustion.
var ErrRateLimited = errors.New("API rate limit reached")

// UpstreamError wraps API failures with a coarse classification that the
// handlers expose to clients.
type UpstreamError struct {
	Kind    string // "api_error" or "connection_error"
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// Client for financialmodelingprep.com.
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	cacheRepo *cache.Repository
	log       zerolog.Logger
	now       func() time.Time
}

// NewClient creates an FMP client. An empty baseURL selects the production
// API. cacheRepo is optional - if nil, caching is disabled.
func NewClient(apiKey, baseURL string, cacheRepo *cache.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		cacheRepo: cacheRepo,
		log:       log.With().Str("client", "fmp").Logger(),
		now:       time.Now,
	}
}

// GetQuotes fetches current prices for tickers, batching cache misses into a
// single API call. Tickers the API does not know are absent from the result.
// If the API fails, stale cached quotes are used where available.
func (c *Client) GetQuotes(tickers []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(tickers))

	var misses []string
	for _, ticker := range dedupe(tickers) {
		var cached cachedQuote
		if c.cacheRepo != nil {
			if found, err := c.cacheRepo.GetIfFresh("quotes", ticker, &cached); err == nil && found {
				prices[ticker] = cached.Price
				continue
			}
		}
		misses = append(misses, ticker)
	}

	if len(misses) == 0 {
		return prices, nil
	}

	body, err := c.get("/quote/" + strings.Join(misses, ","))
	if err != nil {
		if c.fillStaleQuotes(prices, misses) {
			c.log.Warn().Err(err).Strs("tickers", misses).Msg("API failed, using stale cached quotes")
			return prices, nil
		}
		return nil, err
	}

	var quotes []Quote
	if err := json.Unmarshal(body, &quotes); err != nil {
		if c.fillStaleQuotes(prices, misses) {
			c.log.Warn().Err(err).Msg("Failed to parse quote response, using stale cached quotes")
			return prices, nil
		}
		return nil, &UpstreamError{Kind: "api_error", Message: "failed to parse quote response"}
	}

	for _, q := range quotes {
		if q.Price <= 0 {
			continue
		}
		prices[q.Symbol] = q.Price

		if c.cacheRepo != nil {
			if err := c.cacheRepo.Store("quotes", q.Symbol, cachedQuote{Price: q.Price}, cache.TTLQuote); err != nil {
				c.log.Warn().Err(err).Str("ticker", q.Symbol).Msg("Failed to cache quote")
			}
		}
	}

	return prices, nil
}

// GetPriceData fetches current prices plus weekly, monthly and yearly highs.
// Highs are floored at the current price, so a ticker with no usable candles
// gets a neutral dip profile instead of an error. Tickers without a current
// price are absent from the result.
func (c *Client) GetPriceData(tickers []string) (map[string]PriceData, error) {
	quotes, err := c.GetQuotes(tickers)
	if err != nil {
		return nil, err
	}

	highs, err := c.getHighs(dedupe(tickers))
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		c.log.Warn().Err(err).Msg("Historical highs unavailable, falling back to current prices")
		highs = map[string]cachedHighs{}
	}

	result := make(map[string]PriceData, len(quotes))
	for ticker, price := range quotes {
		h := highs[ticker]
		result[ticker] = PriceData{
			Current:     price,
			WeeklyHigh:  math.Max(h.Weekly, price),
			MonthlyHigh: math.Max(h.Monthly, price),
			YearlyHigh:  math.Max(h.Yearly, price),
		}
	}

	return result, nil
}

// getHighs returns candle-derived trailing highs per ticker, batching cache
// misses into one historical request.
func (c *Client) getHighs(tickers []string) (map[string]cachedHighs, error) {
	highs := make(map[string]cachedHighs, len(tickers))

	var misses []string
	for _, ticker := range tickers {
		var cached cachedHighs
		if c.cacheRepo != nil {
			if found, err := c.cacheRepo.GetIfFresh("historical_highs", ticker, &cached); err == nil && found {
				highs[ticker] = cached
				continue
			}
		}
		misses = append(misses, ticker)
	}

	if len(misses) == 0 {
		return highs, nil
	}

	path := fmt.Sprintf("/historical-price-full/%s?timeseries=%d", strings.Join(misses, ","), yearlyWindowDays)
	body, err := c.get(path)
	if err != nil {
		if c.fillStaleHighs(highs, misses) {
			c.log.Warn().Err(err).Strs("tickers", misses).Msg("API failed, using stale cached highs")
			return highs, nil
		}
		return nil, err
	}

	var resp historicalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &UpstreamError{Kind: "api_error", Message: "failed to parse historical response"}
	}

	for _, entry := range resp.entries() {
		computed := c.computeHighs(entry.Historical)
		highs[entry.Symbol] = computed

		if c.cacheRepo != nil {
			if err := c.cacheRepo.Store("historical_highs", entry.Symbol, computed, cache.TTLHistoricalHighs); err != nil {
				c.log.Warn().Err(err).Str("ticker", entry.Symbol).Msg("Failed to cache highs")
			}
		}
	}

	return highs, nil
}

// computeHighs reduces a candle series to the highest high per trailing
// window. Candles with unparsable dates or non-positive highs are skipped.
func (c *Client) computeHighs(candles []candle) cachedHighs {
	now := c.now()
	weekCutoff := now.AddDate(0, 0, -weeklyWindowDays)
	monthCutoff := now.AddDate(0, 0, -monthlyWindowDays)
	yearCutoff := now.AddDate(0, 0, -yearlyWindowDays)

	var weekly, monthly, yearly []float64
	for _, bar := range candles {
		if bar.High <= 0 {
			continue
		}
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			continue
		}

		if !date.Before(yearCutoff) {
			yearly = append(yearly, bar.High)
		}
		if !date.Before(monthCutoff) {
			monthly = append(monthly, bar.High)
		}
		if !date.Before(weekCutoff) {
			weekly = append(weekly, bar.High)
		}
	}

	var out cachedHighs
	if h := formulas.HighestHigh(weekly); h != nil {
		out.Weekly = *h
	}
	if h := formulas.HighestHigh(monthly); h != nil {
		out.Monthly = *h
	}
	if h := formulas.HighestHigh(yearly); h != nil {
		out.Yearly = *h
	}

	return out
}

// get performs a GET request against the API and classifies failures.
func (c *Client) get(path string) ([]byte, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	url := c.baseURL + path + sep + "apikey=" + c.apiKey

	resp, err := c.client.Get(url)
	if err != nil {
		return nil, &UpstreamError{Kind: "connection_error", Message: "failed to reach price API"}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Kind: "connection_error", Message: "failed to read price API response"}
	}

	// FMP reports plan exhaustion in the body, sometimes with status 200.
	if resp.StatusCode == http.StatusTooManyRequests || strings.Contains(string(body), "Limit Reach") {
		return nil, ErrRateLimited
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{
			Kind:    "api_error",
			Message: fmt.Sprintf("price API returned status %d", resp.StatusCode),
		}
	}

	return body, nil
}

func (c *Client) fillStaleQuotes(prices map[string]float64, tickers []string) bool {
	if c.cacheRepo == nil {
		return false
	}

	allFound := true
	for _, ticker := range tickers {
		var cached cachedQuote
		found, err := c.cacheRepo.Get("quotes", ticker, &cached)
		if err != nil || !found {
			allFound = false
			continue
		}
		prices[ticker] = cached.Price
	}

	return allFound
}

func (c *Client) fillStaleHighs(highs map[string]cachedHighs, tickers []string) bool {
	if c.cacheRepo == nil {
		return false
	}

	allFound := true
	for _, ticker := range tickers {
		var cached cachedHighs
		found, err := c.cacheRepo.Get("historical_highs", ticker, &cached)
		if err != nil || !found {
			allFound = false
			continue
		}
		highs[ticker] = cached
	}

	return allFound
}

func dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
