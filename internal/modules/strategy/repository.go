package strategy

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a portfolio has no stored strategy.
var ErrNotFound = errors.New("strategy not found")

// Repository persists one strategy per portfolio.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a strategy repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get loads a portfolio's strategy with allocations in stored order.
func (r *Repository) Get(portfolioID string) (*Strategy, error) {
	var s Strategy
	err := r.db.QueryRow(
		"SELECT id, portfolio_id, updated_at FROM strategies WHERE portfolio_id = ?", portfolioID,
	).Scan(&s.ID, &s.PortfolioID, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}

	rows, err := r.db.Query(
		"SELECT ticker, percentage FROM strategy_allocations WHERE strategy_id = ? ORDER BY position",
		s.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get allocations: %w", err)
	}
	defer rows.Close()

	s.Allocations = []Allocation{}
	for rows.Next() {
		var a Allocation
		if err := rows.Scan(&a.Ticker, &a.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		s.Allocations = append(s.Allocations, a)
	}

	return &s, rows.Err()
}

// Replace atomically swaps a portfolio's strategy for the given allocations,
// creating the strategy row on first use. Callers validate first.
func (r *Repository) Replace(portfolioID string, allocations []Allocation) (*Strategy, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)

	var strategyID string
	err = tx.QueryRow("SELECT id FROM strategies WHERE portfolio_id = ?", portfolioID).Scan(&strategyID)
	switch {
	case err == sql.ErrNoRows:
		strategyID = uuid.NewString()
		if _, err := tx.Exec(
			"INSERT INTO strategies (id, portfolio_id, updated_at) VALUES (?, ?, ?)",
			strategyID, portfolioID, now,
		); err != nil {
			return nil, fmt.Errorf("failed to create strategy: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up strategy: %w", err)
	default:
		if _, err := tx.Exec("UPDATE strategies SET updated_at = ? WHERE id = ?", now, strategyID); err != nil {
			return nil, fmt.Errorf("failed to touch strategy: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM strategy_allocations WHERE strategy_id = ?", strategyID); err != nil {
			return nil, fmt.Errorf("failed to clear allocations: %w", err)
		}
	}

	for i, a := range allocations {
		if _, err := tx.Exec(
			"INSERT INTO strategy_allocations (strategy_id, ticker, percentage, position) VALUES (?, ?, ?, ?)",
			strategyID, a.Ticker, a.Percentage, i,
		); err != nil {
			return nil, fmt.Errorf("failed to insert allocation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit strategy: %w", err)
	}

	return &Strategy{
		ID:          strategyID,
		PortfolioID: portfolioID,
		Allocations: allocations,
		UpdatedAt:   now,
	}, nil
}
