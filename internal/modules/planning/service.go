package planning

import (
	"fmt"

	"github.com/rs/zerolog"

	"folioplan/internal/modules/portfolio"
	"folioplan/internal/modules/strategy"
)

// Service assembles allocator inputs from stored state and live prices.
type Service struct {
	portfolios *portfolio.Repository
	strategies *strategy.Repository
	prices     PriceProvider
	log        zerolog.Logger
}

// NewService creates a planning service.
func NewService(portfolios *portfolio.Repository, strategies *strategy.Repository, prices PriceProvider, log zerolog.Logger) *Service {
	return &Service{
		portfolios: portfolios,
		strategies: strategies,
		prices:     prices,
		log:        log.With().Str("component", "planning").Logger(),
	}
}

// BuildPlan computes a purchase plan for the given portfolio and cash amount.
// Returns portfolio.ErrNotFound for unknown portfolios and ErrNoStrategy when
// no target allocation exists.
func (s *Service) BuildPlan(portfolioID string, availableCash float64) (*Plan, error) {
	if _, err := s.portfolios.Get(portfolioID); err != nil {
		return nil, err
	}

	strat, err := s.strategies.Get(portfolioID)
	if err != nil {
		if err == strategy.ErrNotFound {
			return nil, ErrNoStrategy
		}
		return nil, fmt.Errorf("failed to load strategy: %w", err)
	}

	stocks, err := s.portfolios.ListStocks(portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	holdings := make([]Holding, len(stocks))
	for i, st := range stocks {
		holdings[i] = Holding{Ticker: st.Ticker, Shares: st.Shares, AveragePrice: st.AveragePrice}
	}

	targets := make([]Target, len(strat.Allocations))
	for i, a := range strat.Allocations {
		targets[i] = Target{Ticker: a.Ticker, Percentage: a.Percentage}
	}

	universe := buildUniverse(holdings, targets)
	prices, err := s.prices.GetPriceData(universe)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price data: %w", err)
	}

	plan, err := ComputePlan(holdings, targets, prices, availableCash)
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("portfolio_id", portfolioID).
		Float64("available_cash", availableCash).
		Int("recommendations", len(plan.Recommendations)).
		Float64("remaining_cash", plan.RemainingCash).
		Msg("Computed purchase plan")

	return plan, nil
}
