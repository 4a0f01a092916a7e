package strategy

import (
	"context"

	"ashare-backtest/backtest"
	"ashare-backtest/market"
	"ashare-backtest/portfolio"
)

// BuyHold buys each symbol once, on the first day it trades, and holds to
// the end of the replay. Symbols that are suspended or absent keep being
// retried on later days.
type BuyHold struct {
	Symbols []string
	Budget  float64 // per-symbol cash budget; 0 splits available cash evenly

	bought map[string]bool
}

func (s *BuyHold) Name() string { return "buy-hold" }

func (s *BuyHold) Decide(_ context.Context, day market.Date, view backtest.PortfolioView, store *market.Store) ([]portfolio.Order, error) {
	if s.bought == nil {
		s.bought = make(map[string]bool, len(s.Symbols))
	}

	remaining := 0
	for _, sym := range s.Symbols {
		if !s.bought[sym] {
			remaining++
		}
	}
	if remaining == 0 {
		return nil, nil
	}

	budget := s.Budget
	if budget <= 0 {
		budget = view.Cash / float64(remaining)
	}

	var orders []portfolio.Order
	for _, sym := range s.Symbols {
		if s.bought[sym] {
			continue
		}
		bar, ok, err := store.Bar(sym, day)
		if err != nil {
			return nil, err
		}
		if !ok || bar.Suspended() || bar.Close <= 0 {
			continue
		}
		qty := roundLots(budget, bar.Close)
		if qty == 0 {
			// One lot costs more than the budget; this symbol stays out.
			s.bought[sym] = true
			continue
		}
		orders = append(orders, portfolio.Order{
			Symbol:   sym,
			Action:   portfolio.Buy,
			Quantity: qty,
			Price:    bar.Close,
		})
		s.bought[sym] = true
	}
	return orders, nil
}
