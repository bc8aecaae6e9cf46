// Package history records daily portfolio value snapshots and derives
// performance statistics from the series.
package history

// Snapshot is one portfolio's value on one calendar day. Re-snapshotting the
// same day overwrites the earlier row.
type Snapshot struct {
	PortfolioID    string  `json:"-"`
	Date           string  `json:"date"` // YYYY-MM-DD
	TotalValue     float64 `json:"total_value"`
	TotalPL        float64 `json:"total_pl"`
	TotalPLPercent float64 `json:"total_pl_percent"`
}

// Performance summarizes a snapshot series. Pointer fields are nil when the
// series is too short to compute the statistic.
type Performance struct {
	StartDate            string   `json:"start_date,omitempty"`
	EndDate              string   `json:"end_date,omitempty"`
	SnapshotCount        int      `json:"snapshot_count"`
	TotalReturnPercent   *float64 `json:"total_return_percent"`
	AnnualizedVolatility *float64 `json:"annualized_volatility"`
	SharpeRatio          *float64 `json:"sharpe_ratio"`
	MaxDrawdown          *float64 `json:"max_drawdown"`
}
