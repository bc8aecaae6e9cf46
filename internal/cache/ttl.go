package cache

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Quotes change constantly; keep them just long enough to batch requests.
	TTLQuote = 10 * time.Minute

	// Trailing highs move with at most one new candle per day.
	TTLHistoricalHighs = 24 * time.Hour

	// News queries are rate-limited upstream; an hour of reuse is plenty.
	TTLNews = time.Hour
)
