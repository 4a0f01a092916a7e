package backtest

import (
	"time"

	"ashare-backtest/journal"
	"ashare-backtest/market"
	"ashare-backtest/metrics"
	"ashare-backtest/portfolio"
)

// Rejection records an order that was refused, by the rule checks or by the
// ledger, with the human-readable reasons. Rejected orders never touch state.
type Rejection struct {
	Date     market.Date
	Symbol   string
	Action   portfolio.Action
	Quantity int64
	Reasons  []string
}

// Result is everything one replay produced.
type Result struct {
	RunID          string
	Strategy       string
	StartDate      market.Date
	EndDate        market.Date
	InitialCapital float64
	Trades         []portfolio.Trade
	Snapshots      []portfolio.Snapshot
	Rejections     []Rejection
	Summary        metrics.Summary
}

func (r *Result) runRecord(createdAt time.Time) journal.RunRecord {
	return journal.RunRecord{
		RunID:          r.RunID,
		Strategy:       r.Strategy,
		StartDate:      r.StartDate.String(),
		EndDate:        r.EndDate.String(),
		InitialCapital: r.InitialCapital,
		FinalValue:     r.Summary.FinalValue,
		TotalReturn:    r.Summary.TotalReturn,
		AnnualReturn:   r.Summary.AnnualReturn,
		MaxDrawdown:    r.Summary.MaxDrawdown,
		SharpeRatio:    r.Summary.SharpeRatio,
		WinRate:        r.Summary.WinRate,
		Trades:         int64(len(r.Trades)),
		Rejections:     int64(len(r.Rejections)),
		CreatedAt:      createdAt.UTC().Format(time.RFC3339),
	}
}
