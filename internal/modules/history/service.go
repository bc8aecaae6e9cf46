package history

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"folioplan/internal/modules/portfolio"
	"folioplan/pkg/formulas"
)

// riskFreeRate is the annual rate used for Sharpe ratios.
const riskFreeRate = 0.02

// tradingDaysPerYear annualizes daily return statistics.
const tradingDaysPerYear = 252

// Service creates snapshots and computes performance statistics.
type Service struct {
	repo       *Repository
	portfolios *portfolio.Service
	log        zerolog.Logger
}

// NewService creates a history service.
func NewService(repo *Repository, portfolios *portfolio.Service, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		portfolios: portfolios,
		log:        log.With().Str("component", "history").Logger(),
	}
}

// SnapshotNow values the portfolio and records today's snapshot. Implements
// the snapshotter wired into the portfolio service.
func (s *Service) SnapshotNow(portfolioID string) error {
	view, err := s.portfolios.Valuate(portfolioID)
	if err != nil {
		return err
	}

	snapshot := Snapshot{
		PortfolioID:    portfolioID,
		Date:           time.Now().UTC().Format("2006-01-02"),
		TotalValue:     view.TotalValue,
		TotalPL:        view.TotalPL,
		TotalPLPercent: view.TotalPLPercent,
	}

	if err := s.repo.Upsert(snapshot); err != nil {
		return err
	}

	s.log.Debug().
		Str("portfolio_id", portfolioID).
		Float64("total_value", snapshot.TotalValue).
		Msg("Recorded portfolio snapshot")

	return nil
}

// SnapshotAll records today's snapshot for every portfolio. Failures are
// logged per portfolio so one bad ticker cannot block the rest.
func (s *Service) SnapshotAll() error {
	portfolios, err := s.portfolios.Repository().List()
	if err != nil {
		return fmt.Errorf("failed to list portfolios: %w", err)
	}

	var failures int
	for _, p := range portfolios {
		if err := s.SnapshotNow(p.ID); err != nil {
			failures++
			s.log.Error().Err(err).Str("portfolio_id", p.ID).Msg("Snapshot failed")
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d snapshots failed", failures, len(portfolios))
	}

	return nil
}

// History returns a portfolio's snapshot series. An empty series for a
// portfolio that does hold stocks is seeded with a snapshot taken now, so a
// chart is never blank right after the first purchase.
func (s *Service) History(portfolioID string) ([]Snapshot, error) {
	if _, err := s.portfolios.Repository().Get(portfolioID); err != nil {
		return nil, err
	}

	snapshots, err := s.repo.List(portfolioID)
	if err != nil {
		return nil, err
	}
	if len(snapshots) > 0 {
		return snapshots, nil
	}

	stocks, err := s.portfolios.Repository().ListStocks(portfolioID)
	if err != nil {
		return nil, err
	}
	if len(stocks) == 0 {
		return snapshots, nil
	}

	if err := s.SnapshotNow(portfolioID); err != nil {
		return nil, err
	}

	return s.repo.List(portfolioID)
}

// Performance derives return statistics from a portfolio's snapshot series.
func (s *Service) Performance(portfolioID string) (*Performance, error) {
	snapshots, err := s.History(portfolioID)
	if err != nil {
		return nil, err
	}

	perf := &Performance{SnapshotCount: len(snapshots)}
	if len(snapshots) == 0 {
		return perf, nil
	}

	perf.StartDate = snapshots[0].Date
	perf.EndDate = snapshots[len(snapshots)-1].Date

	values := make([]float64, len(snapshots))
	for i, snap := range snapshots {
		values[i] = snap.TotalValue
	}

	if first := values[0]; first > 0 {
		totalReturn := (values[len(values)-1]/first - 1) * 100
		perf.TotalReturnPercent = &totalReturn
	}

	returns := formulas.DailyReturns(values)
	if len(returns) > 0 {
		vol := formulas.AnnualizedVolatility(returns)
		perf.AnnualizedVolatility = &vol
	}

	perf.SharpeRatio = formulas.CalculateSharpeRatio(returns, riskFreeRate, tradingDaysPerYear)
	perf.MaxDrawdown = formulas.CalculateMaxDrawdown(values)

	return perf, nil
}
