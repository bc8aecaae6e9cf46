package history

import (
	"database/sql"
	"fmt"
	"time"
)

// Repository persists daily portfolio snapshots.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a history repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes a snapshot, replacing any earlier one for the same day.
func (r *Repository) Upsert(s Snapshot) error {
	_, err := r.db.Exec(`
		INSERT INTO portfolio_history (portfolio_id, date, total_value, total_pl, total_pl_percent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (portfolio_id, date) DO UPDATE SET
			total_value = excluded.total_value,
			total_pl = excluded.total_pl,
			total_pl_percent = excluded.total_pl_percent,
			created_at = excluded.created_at`,
		s.PortfolioID, s.Date, s.TotalValue, s.TotalPL, s.TotalPLPercent,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// List returns a portfolio's snapshots ordered by date ascending.
func (r *Repository) List(portfolioID string) ([]Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT portfolio_id, date, total_value, total_pl, total_pl_percent
		FROM portfolio_history WHERE portfolio_id = ? ORDER BY date`,
		portfolioID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.PortfolioID, &s.Date, &s.TotalValue, &s.TotalPL, &s.TotalPLPercent); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}
