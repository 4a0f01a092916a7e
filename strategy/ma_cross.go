package strategy

import (
	"context"

	"ashare-backtest/backtest"
	"ashare-backtest/indicators"
	"ashare-backtest/market"
	"ashare-backtest/portfolio"
)

// MACross trades the crossover of a fast and a slow EMA of daily closes:
// buy when the fast average crosses above the slow one, sell the settled
// shares when it crosses back below. Signals fire only on the cross event,
// not on every day the averages stay apart, so a position is entered and
// exited once per trend.
type MACross struct {
	Symbols []string
	Fast    int // fast EMA period; 0 means 5
	Slow    int // slow EMA period; 0 means 20

	track map[string]*crossTracker
}

// crossTracker is the per-symbol indicator state. rel is the last known
// relation of fast to slow: -1 below, +1 above, 0 not yet established.
type crossTracker struct {
	fast *indicators.EMA
	slow *indicators.EMA
	rel  int
}

func (s *MACross) Name() string { return "ma-cross" }

func (s *MACross) periods() (fast, slow int) {
	fast, slow = s.Fast, s.Slow
	if fast <= 0 {
		fast = 5
	}
	if slow <= 0 {
		slow = 20
	}
	return fast, slow
}

func (s *MACross) Decide(_ context.Context, day market.Date, view backtest.PortfolioView, store *market.Store) ([]portfolio.Order, error) {
	if s.track == nil {
		s.track = make(map[string]*crossTracker, len(s.Symbols))
	}

	type signal struct {
		symbol string
		close  float64
		up     bool
	}
	var signals []signal

	for _, sym := range s.Symbols {
		bar, ok, err := store.Bar(sym, day)
		if err != nil {
			return nil, err
		}
		if !ok || bar.Suspended() || bar.Close <= 0 {
			continue
		}

		tr := s.track[sym]
		if tr == nil {
			fast, slow := s.periods()
			tr = &crossTracker{fast: indicators.NewEMA(fast), slow: indicators.NewEMA(slow)}
			s.track[sym] = tr
		}
		tr.fast.Update(bar.Close)
		tr.slow.Update(bar.Close)
		if !tr.fast.Ready() || !tr.slow.Ready() {
			continue
		}

		rel := -1
		if tr.fast.Value() > tr.slow.Value() {
			rel = 1
		}
		crossed := tr.rel != 0 && rel != tr.rel
		tr.rel = rel
		if !crossed {
			continue
		}
		signals = append(signals, signal{symbol: sym, close: bar.Close, up: rel > 0})
	}

	var orders []portfolio.Order

	// Exits first so their proceeds can fund same-day entries.
	for _, sig := range signals {
		if sig.up {
			continue
		}
		pos, held := view.Position(sig.symbol)
		if !held || pos.Settled <= 0 {
			continue
		}
		orders = append(orders, portfolio.Order{
			Symbol:   sig.symbol,
			Action:   portfolio.Sell,
			Quantity: pos.Settled,
			Price:    sig.close,
		})
	}

	var entries []signal
	for _, sig := range signals {
		if !sig.up {
			continue
		}
		if _, held := view.Position(sig.symbol); held {
			continue
		}
		entries = append(entries, sig)
	}
	if len(entries) == 0 {
		return orders, nil
	}

	budget := view.Cash / float64(len(entries))
	for _, sig := range entries {
		qty := roundLots(budget, sig.close)
		if qty == 0 {
			continue
		}
		orders = append(orders, portfolio.Order{
			Symbol:   sig.symbol,
			Action:   portfolio.Buy,
			Quantity: qty,
			Price:    sig.close,
		})
	}
	return orders, nil
}
