package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrNotFound      = errors.New("portfolio not found")
	ErrStockNotFound = errors.New("stock not found")
	ErrStockMismatch = errors.New("stock does not belong to portfolio")
)

// Repository provides persistence for portfolios and their holdings.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a portfolio repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new portfolio with a generated ID.
func (r *Repository) Create(name string) (*Portfolio, error) {
	p := &Portfolio{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	_, err := r.db.Exec(
		"INSERT INTO portfolios (id, name, created_at) VALUES (?, ?, ?)",
		p.ID, p.Name, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}

	return p, nil
}

// List returns all portfolios ordered by creation time.
func (r *Repository) List() ([]Portfolio, error) {
	rows, err := r.db.Query("SELECT id, name, created_at FROM portfolios ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer rows.Close()

	portfolios := []Portfolio{}
	for rows.Next() {
		var p Portfolio
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		portfolios = append(portfolios, p)
	}

	return portfolios, rows.Err()
}

// Get returns one portfolio or ErrNotFound.
func (r *Repository) Get(id string) (*Portfolio, error) {
	var p Portfolio
	err := r.db.QueryRow(
		"SELECT id, name, created_at FROM portfolios WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	return &p, nil
}

// Rename updates a portfolio's name.
func (r *Repository) Rename(id, name string) (*Portfolio, error) {
	res, err := r.db.Exec("UPDATE portfolios SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return nil, fmt.Errorf("failed to rename portfolio: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return r.Get(id)
}

// Delete removes a portfolio; stocks, strategy and history rows cascade.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM portfolios WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return nil
}

// ListStocks returns all holdings of a portfolio in insertion order.
func (r *Repository) ListStocks(portfolioID string) ([]Stock, error) {
	rows, err := r.db.Query(
		"SELECT id, portfolio_id, ticker, shares, average_price FROM stocks WHERE portfolio_id = ? ORDER BY rowid",
		portfolioID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	defer rows.Close()

	stocks := []Stock{}
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.ID, &s.PortfolioID, &s.Ticker, &s.Shares, &s.AveragePrice); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, s)
	}

	return stocks, rows.Err()
}

// GetStock returns one holding or ErrStockNotFound.
func (r *Repository) GetStock(portfolioID, stockID string) (*Stock, error) {
	var s Stock
	err := r.db.QueryRow(
		"SELECT id, portfolio_id, ticker, shares, average_price FROM stocks WHERE id = ? AND portfolio_id = ?",
		stockID, portfolioID,
	).Scan(&s.ID, &s.PortfolioID, &s.Ticker, &s.Shares, &s.AveragePrice)
	if err == sql.ErrNoRows {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}

	return &s, nil
}

// AddStock records a purchase. Buying a ticker already held merges into the
// existing row: shares accumulate and the average price becomes the
// cost-weighted mean of the old and new lots.
func (r *Repository) AddStock(portfolioID, ticker string, shares, price float64) (*Stock, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing Stock
	err = tx.QueryRow(
		"SELECT id, shares, average_price FROM stocks WHERE portfolio_id = ? AND ticker = ?",
		portfolioID, ticker,
	).Scan(&existing.ID, &existing.Shares, &existing.AveragePrice)

	switch {
	case err == sql.ErrNoRows:
		existing = Stock{
			ID:           uuid.NewString(),
			PortfolioID:  portfolioID,
			Ticker:       ticker,
			Shares:       shares,
			AveragePrice: price,
		}
		_, err = tx.Exec(
			"INSERT INTO stocks (id, portfolio_id, ticker, shares, average_price) VALUES (?, ?, ?, ?, ?)",
			existing.ID, existing.PortfolioID, existing.Ticker, existing.Shares, existing.AveragePrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert stock: %w", err)
		}

	case err != nil:
		return nil, fmt.Errorf("failed to look up stock: %w", err)

	default:
		totalShares := existing.Shares + shares
		totalCost := existing.Shares*existing.AveragePrice + shares*price
		existing.PortfolioID = portfolioID
		existing.Ticker = ticker
		existing.Shares = totalShares
		existing.AveragePrice = totalCost / totalShares

		_, err = tx.Exec(
			"UPDATE stocks SET shares = ?, average_price = ? WHERE id = ?",
			existing.Shares, existing.AveragePrice, existing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock: %w", err)
	}

	return &existing, nil
}

// DeleteStock removes one holding from a portfolio. A stock that exists but
// belongs to a different portfolio yields ErrStockMismatch.
func (r *Repository) DeleteStock(portfolioID, stockID string) error {
	res, err := r.db.Exec("DELETE FROM stocks WHERE id = ? AND portfolio_id = ?", stockID, portfolioID)
	if err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var exists int
	err = r.db.QueryRow("SELECT 1 FROM stocks WHERE id = ?", stockID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrStockNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up stock: %w", err)
	}

	return ErrStockMismatch
}
