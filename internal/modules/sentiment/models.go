package sentiment

// ScoredArticle is a news article with its sentiment score attached.
type ScoredArticle struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	PublishedAt string  `json:"published_at"`
	Score       float64 `json:"score"`
	Label       string  `json:"label"`
}

// TickerSentiment aggregates scored articles for one ticker.
type TickerSentiment struct {
	Ticker       string          `json:"ticker"`
	AverageScore float64         `json:"average_score"`
	Label        string          `json:"label"`
	Articles     []ScoredArticle `json:"articles"`
}

// PortfolioSentiment aggregates ticker sentiment across a portfolio's
// holdings.
type PortfolioSentiment struct {
	PortfolioID  string            `json:"portfolio_id"`
	AverageScore float64           `json:"average_score"`
	Label        string            `json:"label"`
	Tickers      []TickerSentiment `json:"tickers"`
}
