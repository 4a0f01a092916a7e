// Package journal persists backtest output: a header row per run, every
// executed trade and the end-of-day portfolio snapshots. Sinks are pluggable;
// SQLite is the queryable store, CSV the spreadsheet-friendly one.
package journal

import (
	"ashare-backtest/portfolio"
)

// TradeRecord is the flat serialization shape of one executed trade.
type TradeRecord struct {
	RunID      string  `json:"run_id" parquet:"run_id"`
	TradeID    string  `json:"trade_id" parquet:"trade_id"`
	Date       string  `json:"date" parquet:"date"`
	Symbol     string  `json:"symbol" parquet:"symbol"`
	Action     string  `json:"action" parquet:"action"`
	Quantity   int64   `json:"quantity" parquet:"quantity"`
	Price      float64 `json:"price" parquet:"price"`
	Fill       float64 `json:"fill" parquet:"fill"`
	Commission float64 `json:"commission" parquet:"commission"`
	StampTax   float64 `json:"stamp_tax" parquet:"stamp_tax"`
	Slippage   float64 `json:"slippage" parquet:"slippage"`
	CostBasis  float64 `json:"cost_basis" parquet:"cost_basis"`
	CashAfter  float64 `json:"cash_after" parquet:"cash_after"`
}

// SnapshotRecord is one end-of-day valuation row.
type SnapshotRecord struct {
	RunID          string  `json:"run_id" parquet:"run_id"`
	Date           string  `json:"date" parquet:"date"`
	Cash           float64 `json:"cash" parquet:"cash"`
	PositionsValue float64 `json:"positions_value" parquet:"positions_value"`
	TotalValue     float64 `json:"total_value" parquet:"total_value"`
}

// RunRecord is the run header with its final metrics, written once when the
// replay completes.
type RunRecord struct {
	RunID          string  `json:"run_id" parquet:"run_id"`
	Strategy       string  `json:"strategy" parquet:"strategy"`
	StartDate      string  `json:"start_date" parquet:"start_date"`
	EndDate        string  `json:"end_date" parquet:"end_date"`
	InitialCapital float64 `json:"initial_capital" parquet:"initial_capital"`
	FinalValue     float64 `json:"final_value" parquet:"final_value"`
	TotalReturn    float64 `json:"total_return" parquet:"total_return"`
	AnnualReturn   float64 `json:"annual_return" parquet:"annual_return"`
	MaxDrawdown    float64 `json:"max_drawdown" parquet:"max_drawdown"`
	SharpeRatio    float64 `json:"sharpe_ratio" parquet:"sharpe_ratio"`
	WinRate        float64 `json:"win_rate" parquet:"win_rate"`
	Trades         int64   `json:"trades" parquet:"trades"`
	Rejections     int64   `json:"rejections" parquet:"rejections"`
	CreatedAt      string  `json:"created_at" parquet:"created_at"`
}

// Journal is a sink for run output. Implementations flush eagerly so a
// crashed run keeps what it wrote.
type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordSnapshot(SnapshotRecord) error
	Close() error
}

// NewTradeRecord flattens an executed trade for persistence.
func NewTradeRecord(runID string, t portfolio.Trade) TradeRecord {
	return TradeRecord{
		RunID:      runID,
		TradeID:    t.ID,
		Date:       t.Date.String(),
		Symbol:     t.Symbol,
		Action:     string(t.Action),
		Quantity:   t.Quantity,
		Price:      t.Price,
		Fill:       t.Fill,
		Commission: t.Commission,
		StampTax:   t.StampTax,
		Slippage:   t.Slippage,
		CostBasis:  t.CostBasis,
		CashAfter:  t.CashAfter,
	}
}

// NewSnapshotRecord flattens a daily snapshot for persistence.
func NewSnapshotRecord(runID string, s portfolio.Snapshot) SnapshotRecord {
	return SnapshotRecord{
		RunID:          runID,
		Date:           s.Date.String(),
		Cash:           s.Cash,
		PositionsValue: s.PositionsValue,
		TotalValue:     s.TotalValue,
	}
}
