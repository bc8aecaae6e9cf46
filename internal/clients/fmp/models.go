package fmp

// Quote is one entry of the FMP batch quote endpoint.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// candle is one daily bar from the historical price endpoint.
type candle struct {
	Date string  `json:"date"` // YYYY-MM-DD
	High float64 `json:"high"`
}

type historicalEntry struct {
	Symbol     string   `json:"symbol"`
	Historical []candle `json:"historical"`
}

// historicalResponse covers both shapes FMP returns: a wrapper list for
// multi-symbol requests and a bare entry for single-symbol ones.
type historicalResponse struct {
	HistoricalStockList []historicalEntry `json:"historicalStockList"`
	Symbol              string            `json:"symbol"`
	Historical          []candle          `json:"historical"`
}

func (r historicalResponse) entries() []historicalEntry {
	if len(r.HistoricalStockList) > 0 {
		return r.HistoricalStockList
	}
	if r.Symbol != "" {
		return []historicalEntry{{Symbol: r.Symbol, Historical: r.Historical}}
	}
	return nil
}

// PriceData is a ticker's current price with trailing high-water marks.
type PriceData struct {
	Current     float64
	WeeklyHigh  float64
	MonthlyHigh float64
	YearlyHigh  float64
}

// cachedQuote is the msgpack structure stored in the quotes table.
type cachedQuote struct {
	Price float64 `msgpack:"price"`
}

// cachedHighs is the msgpack structure stored in the historical_highs table.
// Zero values mean no candle fell inside the window.
type cachedHighs struct {
	Weekly  float64 `msgpack:"weekly"`
	Monthly float64 `msgpack:"monthly"`
	Yearly  float64 `msgpack:"yearly"`
}
