package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	// Sample std dev of {2, 4, 4, 4, 5, 5, 7, 9} is ~2.138.
	assert.InDelta(t, 2.138, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 0.001)
}

func TestDailyReturns(t *testing.T) {
	assert.Nil(t, DailyReturns([]float64{100}))

	returns := DailyReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)
}

func TestDailyReturnsSkipsZeroBase(t *testing.T) {
	returns := DailyReturns([]float64{0, 100, 110})
	require.Len(t, returns, 1)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
}

func TestAnnualizedVolatility(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedVolatility(nil))

	// Constant returns have zero volatility.
	assert.InDelta(t, 0.0, AnnualizedVolatility([]float64{0.01, 0.01, 0.01}), 1e-9)
}

func TestCalculateSharpeRatio(t *testing.T) {
	assert.Nil(t, CalculateSharpeRatio([]float64{0.01}, 0.02, 252))

	// Zero std dev means the ratio is undefined.
	assert.Nil(t, CalculateSharpeRatio([]float64{0.01, 0.01}, 0.02, 252))

	sharpe := CalculateSharpeRatio([]float64{0.01, 0.02, -0.01, 0.03}, 0.0, 252)
	require.NotNil(t, sharpe)
	assert.Positive(t, *sharpe)
}

func TestCalculateMaxDrawdown(t *testing.T) {
	assert.Nil(t, CalculateMaxDrawdown([]float64{100}))

	// Peak 1100 falls to 1050: drawdown 50/1100.
	dd := CalculateMaxDrawdown([]float64{1000, 1100, 1050, 1200})
	require.NotNil(t, dd)
	assert.InDelta(t, 50.0/1100.0, *dd, 1e-9)

	// Monotonic rise has zero drawdown.
	dd = CalculateMaxDrawdown([]float64{100, 110, 120})
	require.NotNil(t, dd)
	assert.Equal(t, 0.0, *dd)
}

func TestHighestHigh(t *testing.T) {
	assert.Nil(t, HighestHigh(nil))

	single := HighestHigh([]float64{42})
	require.NotNil(t, single)
	assert.Equal(t, 42.0, *single)

	high := HighestHigh([]float64{110, 180, 125, 90})
	require.NotNil(t, high)
	assert.Equal(t, 180.0, *high)
}
