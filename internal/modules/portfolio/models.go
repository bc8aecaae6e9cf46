// Package portfolio provides portfolio and holding management.
package portfolio

// Portfolio is a named collection of stock holdings.
type Portfolio struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"` // ISO datetime
}

// Stock represents a position held in a portfolio.
type Stock struct {
	ID           string  `json:"id"`
	PortfolioID  string  `json:"-"`
	Ticker       string  `json:"ticker"`
	Shares       float64 `json:"shares"`
	AveragePrice float64 `json:"average_price"`
}

// CostBasis returns shares × average purchase price.
func (s Stock) CostBasis() float64 {
	return s.Shares * s.AveragePrice
}

// StockView is a holding priced with a live quote.
type StockView struct {
	ID           string  `json:"id"`
	Ticker       string  `json:"ticker"`
	Shares       float64 `json:"shares"`
	AveragePrice float64 `json:"average_price"`
	CurrentPrice float64 `json:"current_price"`
	Value        float64 `json:"value"`
	PLDollar     float64 `json:"pl_dollar"`
	PLPercent    float64 `json:"pl_percent"`
}

// View is a portfolio valued with live quotes.
type View struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Stocks         []StockView `json:"stocks"`
	TotalValue     float64     `json:"total_value"`
	TotalPL        float64     `json:"total_pl"`
	TotalPLPercent float64     `json:"total_pl_percent"`
}
