package history

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folioplan/internal/modules/portfolio"
)

const testSchema = `
CREATE TABLE portfolios (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE stocks (
    id TEXT PRIMARY KEY,
    portfolio_id TEXT NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
    ticker TEXT NOT NULL,
    shares REAL NOT NULL,
    average_price REAL NOT NULL,
    UNIQUE (portfolio_id, ticker)
);

CREATE TABLE portfolio_history (
    portfolio_id TEXT NOT NULL REFERENCES portfolios(id) ON DELETE CASCADE,
    date TEXT NOT NULL,
    total_value REAL NOT NULL,
    total_pl REAL NOT NULL,
    total_pl_percent REAL NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (portfolio_id, date)
);
`

type stubQuotes struct {
	prices map[string]float64
}

func (s *stubQuotes) GetQuotes(tickers []string) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, t := range tickers {
		if p, ok := s.prices[t]; ok {
			out[t] = p
		}
	}
	return out, nil
}

func setupServices(t *testing.T, prices map[string]float64) (*Service, *portfolio.Repository) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	portfolioRepo := portfolio.NewRepository(db)
	portfolioSvc := portfolio.NewService(portfolioRepo, &stubQuotes{prices: prices}, zerolog.Nop())
	svc := NewService(NewRepository(db), portfolioSvc, zerolog.Nop())

	return svc, portfolioRepo
}

func TestSnapshotNowUpsertsByDate(t *testing.T) {
	svc, repo := setupServices(t, map[string]float64{"AAPL": 150})

	p, err := repo.Create("Main")
	require.NoError(t, err)
	_, err = repo.AddStock(p.ID, "AAPL", 10, 100)
	require.NoError(t, err)

	require.NoError(t, svc.SnapshotNow(p.ID))
	require.NoError(t, svc.SnapshotNow(p.ID))

	snapshots, err := svc.repo.List(p.ID)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), snapshots[0].Date)
	assert.InDelta(t, 1500.0, snapshots[0].TotalValue, 1e-9)
	assert.InDelta(t, 500.0, snapshots[0].TotalPL, 1e-9)
	assert.InDelta(t, 50.0, snapshots[0].TotalPLPercent, 1e-9)
}

func TestHistorySeedsFirstSnapshot(t *testing.T) {
	svc, repo := setupServices(t, map[string]float64{"AAPL": 150})

	p, err := repo.Create("Main")
	require.NoError(t, err)
	_, err = repo.AddStock(p.ID, "AAPL", 2, 100)
	require.NoError(t, err)

	snapshots, err := svc.History(p.ID)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.InDelta(t, 300.0, snapshots[0].TotalValue, 1e-9)
}

func TestHistoryEmptyPortfolioStaysEmpty(t *testing.T) {
	svc, repo := setupServices(t, nil)

	p, err := repo.Create("Empty")
	require.NoError(t, err)

	snapshots, err := svc.History(p.ID)
	require.NoError(t, err)
	assert.Empty(t, snapshots)

	_, err = svc.History("missing")
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}

func TestSnapshotAll(t *testing.T) {
	svc, repo := setupServices(t, map[string]float64{"AAPL": 100, "VTI": 200})

	p1, err := repo.Create("One")
	require.NoError(t, err)
	_, err = repo.AddStock(p1.ID, "AAPL", 1, 90)
	require.NoError(t, err)

	p2, err := repo.Create("Two")
	require.NoError(t, err)
	_, err = repo.AddStock(p2.ID, "VTI", 2, 180)
	require.NoError(t, err)

	require.NoError(t, svc.SnapshotAll())

	for _, id := range []string{p1.ID, p2.ID} {
		snapshots, err := svc.repo.List(id)
		require.NoError(t, err)
		assert.Len(t, snapshots, 1)
	}
}

func TestPerformance(t *testing.T) {
	svc, repo := setupServices(t, nil)

	p, err := repo.Create("Main")
	require.NoError(t, err)

	values := []float64{1000, 1100, 1050, 1200}
	for i, v := range values {
		require.NoError(t, svc.repo.Upsert(Snapshot{
			PortfolioID: p.ID,
			Date:        time.Date(2026, 8, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			TotalValue:  v,
		}))
	}

	perf, err := svc.Performance(p.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, perf.SnapshotCount)
	assert.Equal(t, "2026-08-01", perf.StartDate)
	assert.Equal(t, "2026-08-04", perf.EndDate)

	require.NotNil(t, perf.TotalReturnPercent)
	assert.InDelta(t, 20.0, *perf.TotalReturnPercent, 1e-9)

	require.NotNil(t, perf.MaxDrawdown)
	// Peak 1100 down to 1050.
	assert.InDelta(t, 50.0/1100.0, *perf.MaxDrawdown, 1e-9)

	require.NotNil(t, perf.AnnualizedVolatility)
	assert.Greater(t, *perf.AnnualizedVolatility, 0.0)
	require.NotNil(t, perf.SharpeRatio)
}

func TestPerformanceSingleSnapshot(t *testing.T) {
	svc, repo := setupServices(t, nil)

	p, err := repo.Create("Main")
	require.NoError(t, err)
	require.NoError(t, svc.repo.Upsert(Snapshot{PortfolioID: p.ID, Date: "2026-08-01", TotalValue: 1000}))

	perf, err := svc.Performance(p.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, perf.SnapshotCount)
	require.NotNil(t, perf.TotalReturnPercent)
	assert.Zero(t, *perf.TotalReturnPercent)
	assert.Nil(t, perf.SharpeRatio)
	assert.Nil(t, perf.MaxDrawdown)
	assert.Nil(t, perf.AnnualizedVolatility)
}
