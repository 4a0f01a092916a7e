// Package strategy ships the built-in deciders: a do-nothing baseline, a
// first-sight buy-and-hold, a consensus-score rebalancer and an EMA
// crossover trader. They are deliberately plain; the point of each is to
// exercise the replay loop, not to make money.
package strategy

import (
	"fmt"
	"strings"

	"ashare-backtest/backtest"
	"ashare-backtest/config"
)

var (
	_ backtest.Decider = Noop{}
	_ backtest.Decider = (*BuyHold)(nil)
	_ backtest.Decider = (*Rebalance)(nil)
	_ backtest.Decider = (*MACross)(nil)
)

// ByName builds a strategy from its config section. sc.Symbols is the
// trading universe; the cadence, breadth and period fields only apply to the
// strategies that use them and fall back to their defaults when zero.
func ByName(name string, sc config.StrategyConfig) (backtest.Decider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "buy-hold", "buyhold":
		return &BuyHold{Symbols: sc.Symbols}, nil

	case "rebalance":
		return &Rebalance{Symbols: sc.Symbols, Every: sc.Every, TopN: sc.TopN}, nil

	case "ma-cross", "macross":
		return &MACross{Symbols: sc.Symbols, Fast: sc.Fast, Slow: sc.Slow}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, buy-hold, rebalance, ma-cross)", name)
	}
}

// roundLots converts a cash budget into a buyable quantity, floored to the
// 100-share lot.
func roundLots(budget, price float64) int64 {
	if price <= 0 {
		return 0
	}
	lots := int64(budget / (price * 100))
	if lots <= 0 {
		return 0
	}
	return lots * 100
}
