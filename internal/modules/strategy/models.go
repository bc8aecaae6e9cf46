// Package strategy stores target allocations for portfolios.
package strategy

import (
	"fmt"
	"math"
	"strings"
)

// SumTolerance is the permitted deviation of an allocation sum from 100%.
// Fractional inputs like 33.33 + 33.33 + 33.34 must validate.
const SumTolerance = 0.01

// Allocation is one ticker's target share of a portfolio, in percent.
type Allocation struct {
	Ticker     string  `json:"ticker"`
	Percentage float64 `json:"percentage"`
}

// Strategy is a portfolio's full target allocation. Allocation order is
// preserved and meaningful: the planner breaks score ties by it.
type Strategy struct {
	ID          string       `json:"id"`
	PortfolioID string       `json:"-"`
	Allocations []Allocation `json:"allocations"`
	UpdatedAt   string       `json:"updated_at"`
}

// ValidateAllocations checks a proposed target allocation: non-empty tickers,
// positive percentages, no duplicates, and a sum of 100 within SumTolerance.
func ValidateAllocations(allocations []Allocation) error {
	if len(allocations) == 0 {
		return fmt.Errorf("at least one allocation is required")
	}

	seen := make(map[string]bool, len(allocations))
	sum := 0.0
	for _, a := range allocations {
		ticker := strings.TrimSpace(a.Ticker)
		if ticker == "" {
			return fmt.Errorf("allocation ticker is required")
		}
		if seen[ticker] {
			return fmt.Errorf("duplicate ticker %s", ticker)
		}
		seen[ticker] = true

		if a.Percentage <= 0 || a.Percentage > 100 {
			return fmt.Errorf("percentage for %s must be in (0, 100]", ticker)
		}
		sum += a.Percentage
	}

	if math.Abs(sum-100) > SumTolerance {
		return fmt.Errorf("allocations must sum to 100, got %.2f", sum)
	}

	return nil
}
