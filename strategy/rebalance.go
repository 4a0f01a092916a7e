package strategy

import (
	"context"
	"sort"

	"ashare-backtest/backtest"
	"ashare-backtest/market"
	"ashare-backtest/portfolio"
)

// Rebalance re-picks the portfolio every Every days: rank the tradable
// universe by the day's consensus score, keep the top N, sell whatever fell
// out (settled shares only, so T+1 lots wait a day) and buy entrants with an
// equal share of morning cash. Sale proceeds compound on the next cycle.
type Rebalance struct {
	Symbols []string
	Every   int // cadence in calendar days; 0 means 5
	TopN    int // portfolio breadth; 0 means 3

	day int // days seen since the run started
}

func (s *Rebalance) Name() string { return "rebalance" }

func (s *Rebalance) Decide(_ context.Context, day market.Date, view backtest.PortfolioView, store *market.Store) ([]portfolio.Order, error) {
	every := s.Every
	if every <= 0 {
		every = 5
	}
	n := s.TopN
	if n <= 0 {
		n = 3
	}

	idx := s.day
	s.day++
	if idx%every != 0 {
		return nil, nil
	}

	type candidate struct {
		symbol string
		score  float64
		close  float64
	}
	var ranked []candidate
	for _, sym := range s.Symbols {
		bar, ok, err := store.Bar(sym, day)
		if err != nil {
			return nil, err
		}
		if !ok || bar.Suspended() || bar.Close <= 0 {
			continue
		}
		var score float64
		side, ok, err := store.Side(sym, day)
		if err != nil {
			return nil, err
		}
		if ok {
			score = side.ConsensusScore
		}
		ranked = append(ranked, candidate{symbol: sym, score: score, close: bar.Close})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].symbol < ranked[j].symbol
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	want := make(map[string]bool, len(ranked))
	for _, c := range ranked {
		want[c.symbol] = true
	}

	var orders []portfolio.Order

	// Dropouts first; their proceeds are spendable the same day.
	for _, pos := range view.Positions {
		if want[pos.Symbol] || pos.Settled <= 0 {
			continue
		}
		bar, ok, err := store.Bar(pos.Symbol, day)
		if err != nil {
			return nil, err
		}
		if !ok || bar.Suspended() {
			continue
		}
		orders = append(orders, portfolio.Order{
			Symbol:   pos.Symbol,
			Action:   portfolio.Sell,
			Quantity: pos.Settled,
			Price:    bar.Close,
		})
	}

	var entrants []candidate
	for _, c := range ranked {
		if _, held := view.Position(c.symbol); !held {
			entrants = append(entrants, c)
		}
	}
	if len(entrants) == 0 {
		return orders, nil
	}

	budget := view.Cash / float64(len(entrants))
	for _, c := range entrants {
		qty := roundLots(budget, c.close)
		if qty == 0 {
			continue
		}
		orders = append(orders, portfolio.Order{
			Symbol:   c.symbol,
			Action:   portfolio.Buy,
			Quantity: qty,
			Price:    c.close,
		})
	}
	return orders, nil
}
