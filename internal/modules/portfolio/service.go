package portfolio

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrUnknownTicker marks a purchase of a ticker with no live quote.
var ErrUnknownTicker = errors.New("no price data for ticker")

// QuoteProvider supplies current prices. Tickers without a quote are simply
// absent from the returned map.
type QuoteProvider interface {
	GetQuotes(tickers []string) (map[string]float64, error)
}

// Snapshotter records a portfolio's value for the history series.
type Snapshotter interface {
	SnapshotNow(portfolioID string) error
}

// Service values portfolios with live quotes.
type Service struct {
	repo      *Repository
	quotes    QuoteProvider
	snapshots Snapshotter
	log       zerolog.Logger
}

// NewService creates a portfolio service. The snapshotter is wired after
// construction because the history module depends on this service.
func NewService(repo *Repository, quotes QuoteProvider, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		quotes: quotes,
		log:    log.With().Str("component", "portfolio").Logger(),
	}
}

// SetSnapshotter wires the history snapshotter used after stock purchases.
func (s *Service) SetSnapshotter(snapshots Snapshotter) {
	s.snapshots = snapshots
}

// Repository exposes the underlying repository for other modules.
func (s *Service) Repository() *Repository {
	return s.repo
}

// Valuate prices all holdings of a portfolio. Tickers without a quote are
// valued at zero rather than failing the whole portfolio.
func (s *Service) Valuate(portfolioID string) (*View, error) {
	p, err := s.repo.Get(portfolioID)
	if err != nil {
		return nil, err
	}

	stocks, err := s.repo.ListStocks(portfolioID)
	if err != nil {
		return nil, err
	}

	if len(stocks) == 0 {
		return &View{ID: p.ID, Name: p.Name, Stocks: []StockView{}}, nil
	}

	tickers := make([]string, len(stocks))
	for i, st := range stocks {
		tickers[i] = st.Ticker
	}

	prices, err := s.quotes.GetQuotes(tickers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}

	return s.buildView(p, stocks, prices), nil
}

// ListViews prices every portfolio with a single batch quote fetch over the
// union of all held tickers.
func (s *Service) ListViews() ([]*View, error) {
	portfolios, err := s.repo.List()
	if err != nil {
		return nil, err
	}

	holdings := make(map[string][]Stock, len(portfolios))
	tickerSet := map[string]struct{}{}
	for _, p := range portfolios {
		stocks, err := s.repo.ListStocks(p.ID)
		if err != nil {
			return nil, err
		}
		holdings[p.ID] = stocks
		for _, st := range stocks {
			tickerSet[st.Ticker] = struct{}{}
		}
	}

	prices := map[string]float64{}
	if len(tickerSet) > 0 {
		tickers := make([]string, 0, len(tickerSet))
		for t := range tickerSet {
			tickers = append(tickers, t)
		}
		prices, err = s.quotes.GetQuotes(tickers)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch quotes: %w", err)
		}
	}

	views := make([]*View, 0, len(portfolios))
	for i := range portfolios {
		views = append(views, s.buildView(&portfolios[i], holdings[portfolios[i].ID], prices))
	}

	return views, nil
}

func (s *Service) buildView(p *Portfolio, stocks []Stock, prices map[string]float64) *View {
	view := &View{ID: p.ID, Name: p.Name, Stocks: []StockView{}}

	totalCost := 0.0
	for _, st := range stocks {
		price, ok := prices[st.Ticker]
		if !ok {
			s.log.Warn().Str("ticker", st.Ticker).Msg("No quote available, valuing at zero")
		}

		value := st.Shares * price
		cost := st.CostBasis()
		pl := value - cost
		plPercent := 0.0
		if cost > 0 {
			plPercent = pl / cost * 100
		}

		view.Stocks = append(view.Stocks, StockView{
			ID:           st.ID,
			Ticker:       st.Ticker,
			Shares:       st.Shares,
			AveragePrice: st.AveragePrice,
			CurrentPrice: price,
			Value:        value,
			PLDollar:     pl,
			PLPercent:    plPercent,
		})

		view.TotalValue += value
		totalCost += cost
	}

	view.TotalPL = view.TotalValue - totalCost
	if totalCost > 0 {
		view.TotalPLPercent = view.TotalPL / totalCost * 100
	}

	return view
}

// AddStock records a purchase and refreshes today's history snapshot. The
// ticker must have a live quote; anything the price feed does not know is
// rejected before touching the database.
func (s *Service) AddStock(portfolioID, ticker string, shares, price float64) (*Stock, error) {
	if _, err := s.repo.Get(portfolioID); err != nil {
		return nil, err
	}

	quotes, err := s.quotes.GetQuotes([]string{ticker})
	if err != nil {
		return nil, fmt.Errorf("failed to verify ticker: %w", err)
	}
	if _, ok := quotes[ticker]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	stock, err := s.repo.AddStock(portfolioID, ticker, shares, price)
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil {
		if err := s.snapshots.SnapshotNow(portfolioID); err != nil {
			s.log.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("Failed to snapshot after purchase")
		}
	}

	return stock, nil
}
