package strategy

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE strategies (
    id TEXT PRIMARY KEY,
    portfolio_id TEXT NOT NULL UNIQUE,
    updated_at TEXT NOT NULL
);

CREATE TABLE strategy_allocations (
    strategy_id TEXT NOT NULL REFERENCES strategies(id) ON DELETE CASCADE,
    ticker TEXT NOT NULL,
    percentage REAL NOT NULL CHECK (percentage >= 0 AND percentage <= 100),
    position INTEGER NOT NULL,
    PRIMARY KEY (strategy_id, ticker)
);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func TestReplaceAndGet(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	allocs := []Allocation{
		{Ticker: "VTI", Percentage: 60},
		{Ticker: "AAPL", Percentage: 40},
	}
	saved, err := repo.Replace("p1", allocs)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	got, err := repo.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	// Stored order survives round trips.
	assert.Equal(t, allocs, got.Allocations)
}

func TestGetNotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.Get("p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceSwapsWholesale(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	first, err := repo.Replace("p1", []Allocation{
		{Ticker: "AAPL", Percentage: 50},
		{Ticker: "MSFT", Percentage: 50},
	})
	require.NoError(t, err)

	second, err := repo.Replace("p1", []Allocation{
		{Ticker: "VTI", Percentage: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := repo.Get("p1")
	require.NoError(t, err)
	require.Len(t, got.Allocations, 1)
	assert.Equal(t, "VTI", got.Allocations[0].Ticker)
}

func TestReplaceIsolatedPerPortfolio(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.Replace("p1", []Allocation{{Ticker: "AAPL", Percentage: 100}})
	require.NoError(t, err)
	_, err = repo.Replace("p2", []Allocation{{Ticker: "VTI", Percentage: 100}})
	require.NoError(t, err)

	got, err := repo.Get("p1")
	require.NoError(t, err)
	require.Len(t, got.Allocations, 1)
	assert.Equal(t, "AAPL", got.Allocations[0].Ticker)
}

func TestValidateAllocations(t *testing.T) {
	tests := []struct {
		name    string
		allocs  []Allocation
		wantErr bool
	}{
		{"valid pair", []Allocation{{"AAPL", 60}, {"VTI", 40}}, false},
		{"valid thirds within tolerance", []Allocation{{"A", 33.33}, {"B", 33.33}, {"C", 33.34}}, false},
		{"empty", nil, true},
		{"sum short", []Allocation{{"AAPL", 99.9}}, true},
		{"sum over", []Allocation{{"AAPL", 60}, {"VTI", 41}}, true},
		{"zero percentage", []Allocation{{"AAPL", 0}, {"VTI", 100}}, true},
		{"negative percentage", []Allocation{{"AAPL", -10}, {"VTI", 110}}, true},
		{"duplicate ticker", []Allocation{{"AAPL", 50}, {"AAPL", 50}}, true},
		{"blank ticker", []Allocation{{" ", 100}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAllocations(tt.allocs)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
