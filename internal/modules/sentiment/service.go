package sentiment

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"folioplan/internal/clients/newsapi"
	"folioplan/internal/modules/portfolio"
)

// Article limits. Per-ticker requests clamp to [1, maxArticleLimit];
// portfolio aggregation uses a smaller fixed count per holding to keep the
// response and upstream usage bounded.
const (
	defaultArticleLimit       = 5
	maxArticleLimit           = 10
	portfolioArticlesPerStock = 3
)

// NewsProvider supplies recent articles for a search query.
type NewsProvider interface {
	GetNews(query string) ([]newsapi.Article, error)
}

// Service scores news sentiment for tickers and portfolios.
type Service struct {
	news       NewsProvider
	portfolios *portfolio.Repository
	log        zerolog.Logger
}

// NewService creates a sentiment service.
func NewService(news NewsProvider, portfolios *portfolio.Repository, log zerolog.Logger) *Service {
	return &Service{
		news:       news,
		portfolios: portfolios,
		log:        log.With().Str("component", "sentiment").Logger(),
	}
}

// TickerSentiment fetches news for a ticker and scores up to limit relevant
// articles. A ticker with no relevant articles scores neutral.
func (s *Service) TickerSentiment(ticker string, limit int) (*TickerSentiment, error) {
	if limit <= 0 {
		limit = defaultArticleLimit
	}
	if limit > maxArticleLimit {
		limit = maxArticleLimit
	}

	articles, err := s.news.GetNews(ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", ticker, err)
	}

	relevant := filterRelevant(ticker, articles)
	if len(relevant) > limit {
		relevant = relevant[:limit]
	}

	result := &TickerSentiment{
		Ticker:   ticker,
		Label:    LabelNeutral,
		Articles: make([]ScoredArticle, 0, len(relevant)),
	}

	sum := 0.0
	for _, a := range relevant {
		score := Score(a.Title + ". " + a.Description)
		sum += score

		result.Articles = append(result.Articles, ScoredArticle{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source,
			PublishedAt: a.PublishedAt,
			Score:       score,
			Label:       Label(score),
		})
	}

	if len(result.Articles) > 0 {
		result.AverageScore = sum / float64(len(result.Articles))
		result.Label = Label(result.AverageScore)
	}

	return result, nil
}

// PortfolioSentiment scores a few articles per holding and averages across
// tickers that had relevant news. A failing ticker is skipped, not fatal.
func (s *Service) PortfolioSentiment(portfolioID string) (*PortfolioSentiment, error) {
	if _, err := s.portfolios.Get(portfolioID); err != nil {
		return nil, err
	}

	stocks, err := s.portfolios.ListStocks(portfolioID)
	if err != nil {
		return nil, err
	}

	result := &PortfolioSentiment{
		PortfolioID: portfolioID,
		Label:       LabelNeutral,
		Tickers:     make([]TickerSentiment, 0, len(stocks)),
	}

	sum := 0.0
	scored := 0
	for _, stock := range stocks {
		ts, err := s.TickerSentiment(stock.Ticker, portfolioArticlesPerStock)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", stock.Ticker).Msg("Skipping ticker in portfolio sentiment")
			continue
		}

		result.Tickers = append(result.Tickers, *ts)
		if len(ts.Articles) > 0 {
			sum += ts.AverageScore
			scored++
		}
	}

	if scored > 0 {
		result.AverageScore = sum / float64(scored)
		result.Label = Label(result.AverageScore)
	}

	return result, nil
}

// filterRelevant keeps articles that actually mention the ticker and drops
// duplicate titles, preserving order.
func filterRelevant(ticker string, articles []newsapi.Article) []newsapi.Article {
	needle := strings.ToLower(ticker)
	seen := make(map[string]bool, len(articles))

	out := make([]newsapi.Article, 0, len(articles))
	for _, a := range articles {
		text := strings.ToLower(a.Title + " " + a.Description)
		if !strings.Contains(text, needle) {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(a.Title))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, a)
	}

	return out
}
