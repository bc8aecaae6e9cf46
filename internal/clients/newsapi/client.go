// Package newsapi fetches recent news articles from newsapi.org with
// persistent caching.
package newsapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"folioplan/internal/cache"
)

const defaultBaseURL = "https://newsapi.org/v2"

// pageSize is how many articles one upstream request asks for. The sentiment
// scorer filters and trims further downstream.
const pageSize = 20

// Article is one news item normalized from the upstream response.
type Article struct {
	Title       string `json:"title" msgpack:"title"`
	Description string `json:"description" msgpack:"description"`
	URL         string `json:"url" msgpack:"url"`
	Source      string `json:"source" msgpack:"source"`
	PublishedAt string `json:"published_at" msgpack:"published_at"`
}

type apiResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Client for newsapi.org.
type Client struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	cacheRepo *cache.Repository
	log       zerolog.Logger
}

// NewClient creates a newsapi.org client. An empty baseURL selects the
// production API. cacheRepo is optional - if nil, caching is disabled.
func NewClient(apiKey, baseURL string, cacheRepo *cache.Repository, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 15 * time.Second},
		cacheRepo: cacheRepo,
		log:       log.With().Str("client", "newsapi").Logger(),
	}
}

// GetNews fetches recent English-language articles mentioning the query.
// If the API fails, stale cached articles are returned if available.
func (c *Client) GetNews(query string) ([]Article, error) {
	if c.cacheRepo != nil {
		var cached []Article
		if found, err := c.cacheRepo.GetIfFresh("news", query, &cached); err == nil && found {
			c.log.Debug().Str("query", query).Int("articles", len(cached)).Msg("Cache hit")
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/everything?q=%s&language=en&sortBy=publishedAt&pageSize=%d",
		c.baseURL, url.QueryEscape(query), pageSize)

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build news request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if stale, ok := c.getStaleFromCache(query); ok {
			c.log.Warn().Err(err).Str("query", query).Msg("API failed, using stale cached news")
			return stale, nil
		}
		return nil, fmt.Errorf("news API request failed: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if stale, ok := c.getStaleFromCache(query); ok {
			c.log.Warn().Err(err).Str("query", query).Msg("Failed to parse news response, using stale cache")
			return stale, nil
		}
		return nil, fmt.Errorf("failed to parse news response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || result.Status != "ok" {
		if stale, ok := c.getStaleFromCache(query); ok {
			c.log.Warn().
				Int("status", resp.StatusCode).
				Str("query", query).
				Msg("API error, using stale cached news")
			return stale, nil
		}
		return nil, fmt.Errorf("news API returned status %d: %s", resp.StatusCode, result.Message)
	}

	articles := make([]Article, 0, len(result.Articles))
	for _, a := range result.Articles {
		if a.Title == "" {
			continue
		}
		articles = append(articles, Article{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("news", query, articles, cache.TTLNews); err != nil {
			c.log.Warn().Err(err).Str("query", query).Msg("Failed to cache news")
		}
	}

	c.log.Info().Str("query", query).Int("articles", len(articles)).Msg("Fetched news")

	return articles, nil
}

// getStaleFromCache retrieves cached articles even if expired.
// Stale data is better than no data when the API is down.
func (c *Client) getStaleFromCache(query string) ([]Article, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	var cached []Article
	found, err := c.cacheRepo.Get("news", query, &cached)
	if err != nil || !found {
		return nil, false
	}

	return cached, true
}
