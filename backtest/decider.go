package backtest

import (
	"context"

	"ashare-backtest/market"
	"ashare-backtest/portfolio"
)

// Decider produces the orders for one trading day. It sees the portfolio as
// of that morning and the market store with its clock already advanced, so
// every read it performs is automatically bounded by the replay date.
//
// Returned orders are processed in sequence; an error aborts the run.
type Decider interface {
	Decide(ctx context.Context, day market.Date, view PortfolioView, store *market.Store) ([]portfolio.Order, error)
}

// DecideFunc adapts a plain function to the Decider interface.
type DecideFunc func(ctx context.Context, day market.Date, view PortfolioView, store *market.Store) ([]portfolio.Order, error)

func (f DecideFunc) Decide(ctx context.Context, day market.Date, view PortfolioView, store *market.Store) ([]portfolio.Order, error) {
	return f(ctx, day, view, store)
}

// PositionView is one holding as shown to the strategy: quantity, cost and a
// valuation at the day's close when the symbol traded, at the last known
// close otherwise.
type PositionView struct {
	Symbol   string
	Quantity int64
	AvgCost  float64
	Settled  int64 // sellable today under T+1
	Price    float64
	Value    float64
}

// PortfolioView is the read-only morning state handed to the Decider.
// Positions are sorted by symbol.
type PortfolioView struct {
	Date       market.Date
	Cash       float64
	Positions  []PositionView
	TotalValue float64
}

// Position returns the view row for symbol, if held.
func (v PortfolioView) Position(symbol string) (PositionView, bool) {
	for _, p := range v.Positions {
		if p.Symbol == symbol {
			return p, true
		}
	}
	return PositionView{}, false
}
