package planning

import (
	"errors"
	"fmt"
)

// Composite dip factor weights. Each weight multiplies the ratio of a trailing
// high to the current price; longer windows dominate so a stock well below its
// yearly high scores higher than one merely off last week's high.
const (
	dipWeightYearly  = 0.5
	dipWeightMonthly = 0.3
	dipWeightWeekly  = 0.2
)

// ErrNoStrategy is returned when a plan is requested without target
// allocations. There is nothing to optimize toward.
var ErrNoStrategy = errors.New("no target allocations defined")

// MissingPriceDataError reports a ticker in the holdings ∪ targets universe
// without a usable current price. The allocator refuses to compute on partial
// data; skipping a ticker would corrupt the allocation percentages.
type MissingPriceDataError struct {
	Ticker string
}

func (e *MissingPriceDataError) Error() string {
	return fmt.Sprintf("missing price data for %s", e.Ticker)
}

// ComputePlan builds a whole-share purchase plan for availableCash.
//
// The loop buys one share at a time: each iteration scores every target as
// underweight × compositeDip against the portfolio as already committed, buys
// a single share of the best-scoring affordable ticker, and repeats. This is
// deliberately myopic - spending cash on a ticker shrinks its underweight, so
// dip opportunities and rebalancing pressure keep trading off against each
// other as the cash runs down.
//
// Tickers held but absent from targets are valued in the projection but never
// bought. Exact score ties keep the first candidate in target order.
func ComputePlan(holdings []Holding, targets []Target, prices map[string]PriceInfo, availableCash float64) (*Plan, error) {
	if len(targets) == 0 {
		return nil, ErrNoStrategy
	}

	universe := buildUniverse(holdings, targets)
	for _, ticker := range universe {
		info, ok := prices[ticker]
		if !ok || info.Current <= 0 {
			return nil, &MissingPriceDataError{Ticker: ticker}
		}
	}

	heldShares := make(map[string]float64, len(holdings))
	currentValue := 0.0
	for _, h := range holdings {
		heldShares[h.Ticker] += h.Shares
		currentValue += h.Shares * prices[h.Ticker].Current
	}

	sharesToBuy := make(map[string]int, len(targets))
	for _, t := range targets {
		sharesToBuy[t.Ticker] = 0
	}

	remainingCash := availableCash

	for {
		best := ""
		highestScore := -1.0

		// Holdings value plus cash already committed this run.
		totalValueSoFar := currentValue + (availableCash - remainingCash)

		for _, t := range targets {
			info := prices[t.Ticker]

			if remainingCash < info.Current {
				continue
			}

			ownedValue := (heldShares[t.Ticker] + float64(sharesToBuy[t.Ticker])) * info.Current
			currentAlloc := 0.0
			if totalValueSoFar > 0 {
				currentAlloc = ownedValue / totalValueSoFar
			}

			underweight := t.Percentage/100.0 - currentAlloc
			if underweight <= 0 {
				continue
			}

			score := underweight * compositeDipFactor(info)
			if score > highestScore {
				highestScore = score
				best = t.Ticker
			}
		}

		if best == "" {
			break
		}

		sharesToBuy[best]++
		remainingCash -= prices[best].Current
	}

	return buildPlan(universe, targets, heldShares, sharesToBuy, prices, currentValue, availableCash, remainingCash), nil
}

// compositeDipFactor blends the three trailing-high ratios. A factor above 1
// means the stock trades below at least one recent high; exactly 1 means the
// price sits at all three highs.
func compositeDipFactor(info PriceInfo) float64 {
	yearlyDip := info.YearlyHigh / info.Current
	monthlyDip := info.MonthlyHigh / info.Current
	weeklyDip := info.WeeklyHigh / info.Current

	return dipWeightYearly*yearlyDip + dipWeightMonthly*monthlyDip + dipWeightWeekly*weeklyDip
}

// buildUniverse returns target tickers in allocation order followed by held
// tickers not covered by any target, preserving holding order.
func buildUniverse(holdings []Holding, targets []Target) []string {
	seen := make(map[string]bool, len(targets)+len(holdings))
	universe := make([]string, 0, len(targets)+len(holdings))

	for _, t := range targets {
		if !seen[t.Ticker] {
			seen[t.Ticker] = true
			universe = append(universe, t.Ticker)
		}
	}
	for _, h := range holdings {
		if !seen[h.Ticker] {
			seen[h.Ticker] = true
			universe = append(universe, h.Ticker)
		}
	}

	return universe
}

func buildPlan(universe []string, targets []Target, heldShares map[string]float64, sharesToBuy map[string]int, prices map[string]PriceInfo, currentValue, availableCash, remainingCash float64) *Plan {
	recommendations := make([]Recommendation, 0, len(targets))
	for _, t := range targets {
		n := sharesToBuy[t.Ticker]
		if n <= 0 {
			continue
		}
		info := prices[t.Ticker]
		recommendations = append(recommendations, Recommendation{
			Ticker:       t.Ticker,
			SharesToBuy:  n,
			CurrentPrice: info.Current,
			WeeklyHigh:   info.WeeklyHigh,
			MonthlyHigh:  info.MonthlyHigh,
			YearlyHigh:   info.YearlyHigh,
		})
	}

	finalValue := currentValue + (availableCash - remainingCash)

	allocations := make([]ProjectedAllocation, 0, len(universe))
	for _, ticker := range universe {
		finalShares := heldShares[ticker] + float64(sharesToBuy[ticker])
		if finalShares <= 0 {
			continue
		}

		value := finalShares * prices[ticker].Current
		percentage := 0.0
		if finalValue > 0 {
			percentage = value / finalValue * 100
		}

		allocations = append(allocations, ProjectedAllocation{
			Ticker:     ticker,
			Value:      value,
			Percentage: percentage,
		})
	}

	return &Plan{
		Recommendations: recommendations,
		RemainingCash:   remainingCash,
		ProjectedPortfolio: ProjectedPortfolio{
			TotalValue:  finalValue,
			Allocations: allocations,
		},
	}
}
