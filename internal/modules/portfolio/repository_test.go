package portfolio

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
    shares REAL NOT NULL CHECK (shares >= 0),
    average_price REAL NOT NULL CHECK (average_price >= 0),
    UNIQUE (portfolio_id, ticker)
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

func TestCreateAndGet(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	created, err := repo.Create("Retirement")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Retirement", got.Name)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestGetNotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.Create("One")
	require.NoError(t, err)
	_, err = repo.Create("Two")
	require.NoError(t, err)

	portfolios, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, portfolios, 2)
}

func TestRename(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	p, err := repo.Create("Old")
	require.NoError(t, err)

	renamed, err := repo.Rename(p.ID, "New")
	require.NoError(t, err)
	assert.Equal(t, "New", renamed.Name)

	_, err = repo.Rename("missing", "New")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascadesStocks(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	p, err := repo.Create("Doomed")
	require.NoError(t, err)
	_, err = repo.AddStock(p.ID, "AAPL", 5, 100)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(p.ID))

	stocks, err := repo.ListStocks(p.ID)
	require.NoError(t, err)
	assert.Empty(t, stocks)

	assert.ErrorIs(t, repo.Delete(p.ID), ErrNotFound)
}

func TestAddStockMergesLots(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	p, err := repo.Create("Main")
	require.NoError(t, err)

	first, err := repo.AddStock(p.ID, "AAPL", 10, 100)
	require.NoError(t, err)
	assert.Equal(t, 10.0, first.Shares)
	assert.Equal(t, 100.0, first.AveragePrice)

	// 10 @ 100 + 10 @ 200 averages to 150.
	merged, err := repo.AddStock(p.ID, "AAPL", 10, 200)
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 20.0, merged.Shares)
	assert.InDelta(t, 150.0, merged.AveragePrice, 1e-9)

	stocks, err := repo.ListStocks(p.ID)
	require.NoError(t, err)
	require.Len(t, stocks, 1)
}

func TestDeleteStock(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	p, err := repo.Create("Main")
	require.NoError(t, err)
	other, err := repo.Create("Other")
	require.NoError(t, err)

	stock, err := repo.AddStock(p.ID, "AAPL", 1, 100)
	require.NoError(t, err)

	// Wrong portfolio must not delete someone else's stock.
	assert.ErrorIs(t, repo.DeleteStock(other.ID, stock.ID), ErrStockMismatch)

	require.NoError(t, repo.DeleteStock(p.ID, stock.ID))
	_, err = repo.GetStock(p.ID, stock.ID)
	assert.ErrorIs(t, err, ErrStockNotFound)
}
