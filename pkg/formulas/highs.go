package formulas

import (
	"github.com/markcheno/go-talib"
)

// HighestHigh returns the maximum of a series of daily highs, or nil when the
// series is empty.
//
// Args:
//
//	highs: Array of daily high prices, oldest first
//
// Returns:
//	Highest value in the series or nil if no data
func HighestHigh(highs []float64) *float64 {
	if len(highs) == 0 {
		return nil
	}
	if len(highs) == 1 {
		result := highs[0]
		return &result
	}

	// talib.Max computes a rolling maximum; with the window spanning the whole
	// series the last element is the overall high.
	rolling := talib.Max(highs, len(highs))
	result := rolling[len(rolling)-1]
	if isNaN(result) {
		return nil
	}
	return &result
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
