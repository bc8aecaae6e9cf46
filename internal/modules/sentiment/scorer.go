// Package sentiment scores news headlines for portfolio tickers using a
// small finance-oriented lexicon.
package sentiment

import (
	"math"
	"strings"
)

// Classification thresholds on the compound score.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Sentiment labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// negationWindow is how many tokens back a negator still flips a word.
const negationWindow = 3

// lexicon maps lowercase tokens to valence in [-4, 4], with financial news
// vocabulary weighted toward market-moving terms.
var lexicon = map[string]float64{
	// Positive.
	"gain": 1.6, "gains": 1.6, "gained": 1.6, "rally": 2.0, "rallies": 2.0,
	"surge": 2.2, "surges": 2.2, "surged": 2.2, "soar": 2.4, "soars": 2.4,
	"soared": 2.4, "jump": 1.8, "jumps": 1.8, "jumped": 1.8, "climb": 1.5,
	"climbs": 1.5, "climbed": 1.5, "rise": 1.4, "rises": 1.4, "rose": 1.4,
	"beat": 1.8, "beats": 1.8, "record": 1.5, "strong": 1.7, "stronger": 1.8,
	"growth": 1.6, "profit": 1.7, "profits": 1.7, "profitable": 1.8,
	"upgrade": 2.0, "upgraded": 2.0, "outperform": 1.9, "bullish": 2.1,
	"boom": 2.0, "win": 1.6, "wins": 1.6, "success": 1.8, "successful": 1.8,
	"positive": 1.5, "optimistic": 1.7, "exceed": 1.7, "exceeds": 1.7,
	"exceeded": 1.7, "buy": 1.2, "recovery": 1.5, "rebound": 1.6,
	"rebounds": 1.6, "good": 1.3, "great": 2.0, "best": 2.2, "high": 1.0,
	"boost": 1.6, "boosts": 1.6, "boosted": 1.6, "breakthrough": 2.1,
	"dividend": 0.8, "expansion": 1.3, "innovative": 1.4,

	// Negative.
	"loss": -1.7, "losses": -1.7, "lose": -1.6, "loses": -1.6, "lost": -1.6,
	"fall": -1.4, "falls": -1.4, "fell": -1.4, "drop": -1.6, "drops": -1.6,
	"dropped": -1.6, "plunge": -2.3, "plunges": -2.3, "plunged": -2.3,
	"crash": -2.6, "crashes": -2.6, "crashed": -2.6, "tumble": -2.0,
	"tumbles": -2.0, "tumbled": -2.0, "sink": -1.8, "sinks": -1.8,
	"sank": -1.8, "slump": -1.9, "slumps": -1.9, "slumped": -1.9,
	"decline": -1.5, "declines": -1.5, "declined": -1.5, "weak": -1.6,
	"weaker": -1.7, "miss": -1.7, "misses": -1.7, "missed": -1.7,
	"downgrade": -2.0, "downgraded": -2.0, "underperform": -1.9,
	"bearish": -2.1, "recession": -2.2, "lawsuit": -1.8, "sued": -1.8,
	"fraud": -2.8, "scandal": -2.5, "investigation": -1.5, "probe": -1.4,
	"layoff": -2.0, "layoffs": -2.0, "bankruptcy": -2.9, "bankrupt": -2.9,
	"default": -2.1, "debt": -1.0, "warning": -1.5, "warns": -1.5,
	"warned": -1.5, "cut": -1.2, "cuts": -1.2, "risk": -1.1, "risks": -1.1,
	"fear": -1.7, "fears": -1.7, "sell": -1.2, "selloff": -2.0,
	"bad": -1.5, "worst": -2.4, "low": -1.0, "negative": -1.5,
	"concern": -1.3, "concerns": -1.3, "trouble": -1.6, "volatile": -1.2,
	"crisis": -2.3, "halt": -1.5, "halted": -1.5, "recall": -1.6,
	"penalty": -1.6, "fine": -1.2, "fined": -1.6,
}

// negators flip the valence of a nearby sentiment word.
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "neither": true, "nor": true,
	"cannot": true, "can't": true, "won't": true, "isn't": true,
	"aren't": true, "wasn't": true, "weren't": true, "doesn't": true,
	"don't": true, "didn't": true, "without": true,
}

// Score computes a compound sentiment score in (-1, 1) for a piece of text.
// Token valences are summed and squashed, so longer texts with consistent
// tone score further from zero.
func Score(text string) float64 {
	tokens := tokenize(text)

	sum := 0.0
	for i, token := range tokens {
		valence, ok := lexicon[token]
		if !ok {
			continue
		}

		if negatedAt(tokens, i) {
			valence = -valence * 0.74
		}

		sum += valence
	}

	if sum == 0 {
		return 0
	}

	return sum / math.Sqrt(sum*sum+15)
}

// Label classifies a compound score.
func Label(score float64) string {
	switch {
	case score >= positiveThreshold:
		return LabelPositive
	case score <= negativeThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'' {
			return false
		}
		return true
	})
}

func negatedAt(tokens []string, i int) bool {
	start := i - negationWindow
	if start < 0 {
		start = 0
	}
	for j := start; j < i; j++ {
		if negators[tokens[j]] {
			return true
		}
	}
	return false
}
