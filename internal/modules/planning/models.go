// Package planning computes whole-share purchase plans that push a portfolio
// toward its target allocation, preferring tickers trading below recent highs.
package planning

// Holding is a position already owned, as seen by the allocator.
type Holding struct {
	Ticker       string
	Shares       float64
	AveragePrice float64
}

// Target is one entry of a portfolio's target allocation.
// Percentage is expressed in [0, 100]; a full target set sums to 100.
type Target struct {
	Ticker     string
	Percentage float64
}

// PriceInfo carries the current price and trailing high-water marks for one
// ticker. It is fetched fresh per request and never persisted.
type PriceInfo struct {
	Current     float64 `json:"current"`
	WeeklyHigh  float64 `json:"weekly_high"`
	MonthlyHigh float64 `json:"monthly_high"`
	YearlyHigh  float64 `json:"yearly_high"`
}

// Recommendation is a single buy recommendation within a plan.
type Recommendation struct {
	Ticker       string  `json:"ticker"`
	SharesToBuy  int     `json:"shares_to_buy"`
	CurrentPrice float64 `json:"current_price"`
	WeeklyHigh   float64 `json:"weekly_high"`
	MonthlyHigh  float64 `json:"monthly_high"`
	YearlyHigh   float64 `json:"yearly_high"`
}

// ProjectedAllocation is one ticker's share of the post-trade portfolio.
type ProjectedAllocation struct {
	Ticker     string  `json:"ticker"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// ProjectedPortfolio is the portfolio as it would look after executing a plan.
type ProjectedPortfolio struct {
	TotalValue  float64               `json:"total_value"`
	Allocations []ProjectedAllocation `json:"allocations"`
}

// Plan is the result of one allocation run.
type Plan struct {
	Recommendations    []Recommendation   `json:"recommendations"`
	RemainingCash      float64            `json:"remaining_cash"`
	ProjectedPortfolio ProjectedPortfolio `json:"projected_portfolio"`
}

// PriceProvider supplies current prices and trailing highs for a set of
// tickers. Implementations may return partial data; the allocator rejects
// incomplete inputs itself.
type PriceProvider interface {
	GetPriceData(tickers []string) (map[string]PriceInfo, error)
}
