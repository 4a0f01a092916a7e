// Package metrics computes summary statistics over a completed run: returns,
// drawdown, Sharpe ratio and win rate. All ratios are fractions; rendering as
// percent is the report layer's job.
package metrics

import (
	"math"

	"ashare-backtest/portfolio"
)

// Annualization constants. The replay steps calendar days, so a year is 365
// observations and the risk-free rate is quoted per calendar day.
const (
	RiskFreeAnnual = 0.03
	DaysPerYear    = 365
)

// Summary is the performance record of one run.
type Summary struct {
	Days           int
	InitialCapital float64
	FinalValue     float64
	TotalReturn    float64
	AnnualReturn   float64
	MaxDrawdown    float64
	SharpeRatio    float64
	WinRate        float64
	TotalTrades    int
	SellTrades     int
	WinningTrades  int
}

// Compute derives the summary from the daily snapshot series and the trade
// log. An empty snapshot series yields a zero summary apart from the trade
// counts; fewer than two snapshots or a flat series yields a zero Sharpe.
func Compute(initial float64, snaps []portfolio.Snapshot, trades []portfolio.Trade) Summary {
	s := Summary{
		InitialCapital: initial,
		TotalTrades:    len(trades),
	}

	for _, t := range trades {
		if t.Action != portfolio.Sell {
			continue
		}
		s.SellTrades++
		if t.Fill > t.CostBasis {
			s.WinningTrades++
		}
	}
	if s.SellTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.SellTrades)
	}

	if len(snaps) == 0 || initial <= 0 {
		return s
	}

	s.Days = len(snaps)
	s.FinalValue = snaps[len(snaps)-1].TotalValue
	s.TotalReturn = s.FinalValue/initial - 1
	s.AnnualReturn = math.Pow(s.FinalValue/initial, DaysPerYear/float64(s.Days)) - 1
	s.MaxDrawdown = maxDrawdown(snaps)
	s.SharpeRatio = sharpe(snaps)

	return s
}

// maxDrawdown is the largest peak-to-trough loss as a fraction of the
// running peak, which starts at the first snapshot's value.
func maxDrawdown(snaps []portfolio.Snapshot) float64 {
	peak := snaps[0].TotalValue
	var worst float64
	for _, sn := range snaps {
		if sn.TotalValue > peak {
			peak = sn.TotalValue
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - sn.TotalValue) / peak; dd > worst {
			worst = dd
		}
	}
	return worst
}

// sharpe is the annualized ratio of mean daily excess return to the
// population standard deviation of daily returns.
func sharpe(snaps []portfolio.Snapshot) float64 {
	if len(snaps) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(snaps)-1)
	for i := 1; i < len(snaps); i++ {
		prev := snaps[i-1].TotalValue
		if prev <= 0 {
			continue
		}
		returns = append(returns, snaps[i].TotalValue/prev-1)
	}
	if len(returns) == 0 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	daily := RiskFreeAnnual / DaysPerYear
	return (mean - daily) / std * math.Sqrt(DaysPerYear)
}
