package strategy

import (
	"context"

	"ashare-backtest/backtest"
	"ashare-backtest/market"
	"ashare-backtest/portfolio"
)

// Noop never trades. Useful as a baseline equity curve and in tests.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Decide(context.Context, market.Date, backtest.PortfolioView, *market.Store) ([]portfolio.Order, error) {
	return nil, nil
}
