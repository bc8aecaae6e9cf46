package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flat returns price data with all highs equal to the current price, so the
// composite dip factor is exactly 1 and scores reduce to pure underweight.
func flat(price float64) PriceInfo {
	return PriceInfo{Current: price, WeeklyHigh: price, MonthlyHigh: price, YearlyHigh: price}
}

func TestComputePlanSingleTarget(t *testing.T) {
	targets := []Target{{Ticker: "AAPL", Percentage: 100}}
	prices := map[string]PriceInfo{"AAPL": flat(100)}

	plan, err := ComputePlan(nil, targets, prices, 250)
	require.NoError(t, err)

	// One share puts the sole position at exactly 100% of deployed value, so
	// the underweight vanishes and the loop stops with cash left over.
	require.Len(t, plan.Recommendations, 1)
	assert.Equal(t, "AAPL", plan.Recommendations[0].Ticker)
	assert.Equal(t, 1, plan.Recommendations[0].SharesToBuy)
	assert.InDelta(t, 150.0, plan.RemainingCash, 1e-9)

	assert.InDelta(t, 100.0, plan.ProjectedPortfolio.TotalValue, 1e-9)
	require.Len(t, plan.ProjectedPortfolio.Allocations, 1)
	assert.InDelta(t, 100.0, plan.ProjectedPortfolio.Allocations[0].Percentage, 1e-9)
}

func TestComputePlanStopsAtTargetWithCashLeft(t *testing.T) {
	holdings := []Holding{{Ticker: "AAPL", Shares: 10, AveragePrice: 100}}
	targets := []Target{
		{Ticker: "AAPL", Percentage: 50},
		{Ticker: "MSFT", Percentage: 50},
	}
	prices := map[string]PriceInfo{"AAPL": flat(100), "MSFT": flat(100)}

	plan, err := ComputePlan(holdings, targets, prices, 1400)
	require.NoError(t, err)

	// After 10 MSFT shares both sides sit at exactly 50%; no position is
	// underweight anymore, so the remaining cash stays unspent.
	require.Len(t, plan.Recommendations, 1)
	assert.Equal(t, "MSFT", plan.Recommendations[0].Ticker)
	assert.Equal(t, 10, plan.Recommendations[0].SharesToBuy)
	assert.InDelta(t, 400.0, plan.RemainingCash, 1e-9)
	assert.InDelta(t, 2000.0, plan.ProjectedPortfolio.TotalValue, 1e-9)
}

func TestComputePlanRebalancesTowardParity(t *testing.T) {
	holdings := []Holding{{Ticker: "AAPL", Shares: 10, AveragePrice: 100}}
	targets := []Target{
		{Ticker: "AAPL", Percentage: 50},
		{Ticker: "MSFT", Percentage: 50},
	}
	prices := map[string]PriceInfo{"AAPL": flat(100), "MSFT": flat(100)}

	plan, err := ComputePlan(holdings, targets, prices, 1000)
	require.NoError(t, err)

	// All cash flows into MSFT until both sides sit at 50%.
	require.Len(t, plan.Recommendations, 1)
	assert.Equal(t, "MSFT", plan.Recommendations[0].Ticker)
	assert.Equal(t, 10, plan.Recommendations[0].SharesToBuy)
	assert.InDelta(t, 0.0, plan.RemainingCash, 1e-9)

	for _, alloc := range plan.ProjectedPortfolio.Allocations {
		assert.InDelta(t, 50.0, alloc.Percentage, 1e-9, alloc.Ticker)
	}
}

func TestComputePlanPrefersDeeperDip(t *testing.T) {
	targets := []Target{
		{Ticker: "AAPL", Percentage: 50},
		{Ticker: "MSFT", Percentage: 50},
	}
	prices := map[string]PriceInfo{
		"AAPL": flat(100),
		"MSFT": {Current: 100, WeeklyHigh: 100, MonthlyHigh: 100, YearlyHigh: 150},
	}

	// One share of cash: the ticker further below its yearly high wins.
	plan, err := ComputePlan(nil, targets, prices, 100)
	require.NoError(t, err)

	require.Len(t, plan.Recommendations, 1)
	assert.Equal(t, "MSFT", plan.Recommendations[0].Ticker)
	assert.Equal(t, 1, plan.Recommendations[0].SharesToBuy)
}

func TestComputePlanTieKeepsTargetOrder(t *testing.T) {
	targets := []Target{
		{Ticker: "MSFT", Percentage: 50},
		{Ticker: "AAPL", Percentage: 50},
	}
	prices := map[string]PriceInfo{"AAPL": flat(100), "MSFT": flat(100)}

	plan, err := ComputePlan(nil, targets, prices, 100)
	require.NoError(t, err)

	require.Len(t, plan.Recommendations, 1)
	assert.Equal(t, "MSFT", plan.Recommendations[0].Ticker)
}

func TestComputePlanZeroCash(t *testing.T) {
	holdings := []Holding{{Ticker: "AAPL", Shares: 5, AveragePrice: 90}}
	targets := []Target{{Ticker: "AAPL", Percentage: 100}}
	prices := map[string]PriceInfo{"AAPL": flat(100)}

	plan, err := ComputePlan(holdings, targets, prices, 0)
	require.NoError(t, err)

	assert.Empty(t, plan.Recommendations)
	assert.Zero(t, plan.RemainingCash)
	assert.InDelta(t, 500.0, plan.ProjectedPortfolio.TotalValue, 1e-9)
}

func TestComputePlanCashBelowCheapestShare(t *testing.T) {
	targets := []Target{{Ticker: "AAPL", Percentage: 100}}
	prices := map[string]PriceInfo{"AAPL": flat(100)}

	plan, err := ComputePlan(nil, targets, prices, 99.99)
	require.NoError(t, err)

	assert.Empty(t, plan.Recommendations)
	assert.InDelta(t, 99.99, plan.RemainingCash, 1e-9)
}

func TestComputePlanConservesCash(t *testing.T) {
	holdings := []Holding{
		{Ticker: "AAPL", Shares: 3, AveragePrice: 120},
		{Ticker: "VTI", Shares: 7, AveragePrice: 200},
	}
	targets := []Target{
		{Ticker: "AAPL", Percentage: 40},
		{Ticker: "VTI", Percentage: 35},
		{Ticker: "MSFT", Percentage: 25},
	}
	prices := map[string]PriceInfo{
		"AAPL": {Current: 131.07, WeeklyHigh: 135, MonthlyHigh: 140, YearlyHigh: 182},
		"VTI":  {Current: 219.5, WeeklyHigh: 222, MonthlyHigh: 230, YearlyHigh: 244},
		"MSFT": {Current: 303.25, WeeklyHigh: 310, MonthlyHigh: 322, YearlyHigh: 349},
	}

	cash := 5000.0
	plan, err := ComputePlan(holdings, targets, prices, cash)
	require.NoError(t, err)

	spent := 0.0
	for _, rec := range plan.Recommendations {
		assert.Greater(t, rec.SharesToBuy, 0)
		spent += float64(rec.SharesToBuy) * rec.CurrentPrice
	}
	assert.InDelta(t, cash-spent, plan.RemainingCash, 1e-6)
	assert.GreaterOrEqual(t, plan.RemainingCash, 0.0)

	// Projected total equals holdings value plus spent cash.
	held := 3*131.07 + 7*219.5
	assert.InDelta(t, held+spent, plan.ProjectedPortfolio.TotalValue, 1e-6)

	sum := 0.0
	for _, alloc := range plan.ProjectedPortfolio.Allocations {
		sum += alloc.Percentage
	}
	assert.InDelta(t, 100.0, sum, 1e-6)
}

func TestComputePlanNeverBuysNonTargets(t *testing.T) {
	holdings := []Holding{{Ticker: "LEGACY", Shares: 2, AveragePrice: 50}}
	targets := []Target{{Ticker: "AAPL", Percentage: 100}}
	prices := map[string]PriceInfo{
		"AAPL":   flat(100),
		"LEGACY": {Current: 10, WeeklyHigh: 40, MonthlyHigh: 60, YearlyHigh: 90},
	}

	plan, err := ComputePlan(holdings, targets, prices, 1000)
	require.NoError(t, err)

	for _, rec := range plan.Recommendations {
		assert.NotEqual(t, "LEGACY", rec.Ticker)
	}

	// The legacy position still shows up in the projection.
	tickers := make([]string, 0, len(plan.ProjectedPortfolio.Allocations))
	for _, alloc := range plan.ProjectedPortfolio.Allocations {
		tickers = append(tickers, alloc.Ticker)
	}
	assert.Contains(t, tickers, "LEGACY")
}

func TestComputePlanMoreCashNeverBuysLess(t *testing.T) {
	targets := []Target{
		{Ticker: "AAPL", Percentage: 60},
		{Ticker: "MSFT", Percentage: 40},
	}
	prices := map[string]PriceInfo{
		"AAPL": {Current: 100, WeeklyHigh: 105, MonthlyHigh: 110, YearlyHigh: 130},
		"MSFT": {Current: 250, WeeklyHigh: 255, MonthlyHigh: 270, YearlyHigh: 300},
	}

	prevSpent := 0.0
	for cash := 0.0; cash <= 3000; cash += 100 {
		plan, err := ComputePlan(nil, targets, prices, cash)
		require.NoError(t, err)

		spent := cash - plan.RemainingCash
		assert.GreaterOrEqual(t, spent, prevSpent, "cash=%v", cash)
		prevSpent = spent
	}
}

func TestComputePlanNoTargets(t *testing.T) {
	_, err := ComputePlan(nil, nil, map[string]PriceInfo{}, 1000)
	assert.ErrorIs(t, err, ErrNoStrategy)
}

func TestComputePlanMissingPrice(t *testing.T) {
	holdings := []Holding{{Ticker: "VTI", Shares: 1, AveragePrice: 200}}
	targets := []Target{{Ticker: "AAPL", Percentage: 100}}

	// Held ticker missing from the price map.
	_, err := ComputePlan(holdings, targets, map[string]PriceInfo{"AAPL": flat(100)}, 500)
	var missing *MissingPriceDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "VTI", missing.Ticker)

	// Zero price counts as missing too.
	_, err = ComputePlan(nil, targets, map[string]PriceInfo{"AAPL": flat(0)}, 500)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "AAPL", missing.Ticker)
}

func TestCompositeDipFactor(t *testing.T) {
	assert.InDelta(t, 1.0, compositeDipFactor(flat(100)), 1e-9)

	info := PriceInfo{Current: 100, WeeklyHigh: 110, MonthlyHigh: 120, YearlyHigh: 150}
	// 0.5*1.5 + 0.3*1.2 + 0.2*1.1 = 1.33
	assert.InDelta(t, 1.33, compositeDipFactor(info), 1e-9)
}
