package portfolio

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

type recordingSnapshotter struct {
	calls []string
}

func (r *recordingSnapshotter) SnapshotNow(portfolioID string) error {
	r.calls = append(r.calls, portfolioID)
	return nil
}

func TestValuate(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo, &stubQuotes{prices: map[string]float64{"AAPL": 150, "MSFT": 300}}, zerolog.Nop())

	p, err := repo.Create("Main")
	require.NoError(t, err)
	_, err = repo.AddStock(p.ID, "AAPL", 10, 100)
	require.NoError(t, err)
	_, err = repo.AddStock(p.ID, "MSFT", 2, 400)
	require.NoError(t, err)

	view, err := svc.Valuate(p.ID)
	require.NoError(t, err)

	// AAPL: 1500 value on 1000 cost. MSFT: 600 value on 800 cost.
	assert.InDelta(t, 2100.0, view.TotalValue, 1e-9)
	assert.InDelta(t, 300.0, view.TotalPL, 1e-9)
	assert.InDelta(t, 300.0/1800.0*100, view.TotalPLPercent, 1e-9)

	require.Len(t, view.Stocks, 2)
	aapl := view.Stocks[0]
	assert.Equal(t, "AAPL", aapl.Ticker)
	assert.InDelta(t, 500.0, aapl.PLDollar, 1e-9)
	assert.InDelta(t, 50.0, aapl.PLPercent, 1e-9)
}

func TestValuateMissingQuoteValuesAtZero(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo, &stubQuotes{prices: map[string]float64{}}, zerolog.Nop())

	p, err := repo.Create("Main")
	require.NoError(t, err)
	_, err = repo.AddStock(p.ID, "GHOST", 3, 50)
	require.NoError(t, err)

	view, err := svc.Valuate(p.ID)
	require.NoError(t, err)

	assert.Zero(t, view.TotalValue)
	assert.InDelta(t, -150.0, view.TotalPL, 1e-9)
}

func TestValuateEmptyPortfolio(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo, &stubQuotes{}, zerolog.Nop())

	p, err := repo.Create("Empty")
	require.NoError(t, err)

	view, err := svc.Valuate(p.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Stocks)
	assert.Zero(t, view.TotalValue)
	assert.Zero(t, view.TotalPLPercent)
}

func TestAddStockTriggersSnapshot(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo, &stubQuotes{prices: map[string]float64{"AAPL": 100}}, zerolog.Nop())
	snaps := &recordingSnapshotter{}
	svc.SetSnapshotter(snaps)

	p, err := repo.Create("Main")
	require.NoError(t, err)

	_, err = svc.AddStock(p.ID, "AAPL", 1, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, snaps.calls)

	_, err = svc.AddStock("missing", "AAPL", 1, 100)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, snaps.calls, 1)
}

func TestAddStockRejectsUnknownTicker(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo, &stubQuotes{prices: map[string]float64{}}, zerolog.Nop())

	p, err := repo.Create("Main")
	require.NoError(t, err)

	_, err = svc.AddStock(p.ID, "GHOST", 1, 100)
	assert.ErrorIs(t, err, ErrUnknownTicker)

	stocks, err := repo.ListStocks(p.ID)
	require.NoError(t, err)
	assert.Empty(t, stocks)
}

func TestListViews(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo, &stubQuotes{prices: map[string]float64{"AAPL": 150}}, zerolog.Nop())

	first, err := repo.Create("First")
	require.NoError(t, err)
	second, err := repo.Create("Second")
	require.NoError(t, err)
	_, err = repo.AddStock(first.ID, "AAPL", 10, 100)
	require.NoError(t, err)

	views, err := svc.ListViews()
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, first.ID, views[0].ID)
	assert.InDelta(t, 1500.0, views[0].TotalValue, 1e-9)
	require.Len(t, views[0].Stocks, 1)

	assert.Equal(t, second.ID, views[1].ID)
	assert.Empty(t, views[1].Stocks)
	assert.Zero(t, views[1].TotalValue)
}
