package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
)

// CSV journals into three files under one directory: runs.csv, trades.csv
// and snapshots.csv. Rows are flushed as they arrive.
type CSV struct {
	runs, trades, snaps *csv.Writer
	rf, tf, sf          *os.File
}

var (
	runHeader = []string{"run_id", "strategy", "start_date", "end_date",
		"initial_capital", "final_value", "total_return", "annual_return",
		"max_drawdown", "sharpe_ratio", "win_rate", "trades", "rejections", "created_at"}
	tradeHeader = []string{"trade_id", "run_id", "date", "symbol", "action",
		"quantity", "price", "fill", "commission", "stamp_tax", "slippage",
		"cost_basis", "cash_after"}
	snapshotHeader = []string{"run_id", "date", "cash", "positions_value", "total_value"}
)

func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	rf, err := os.Create(filepath.Join(dir, "runs.csv"))
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(filepath.Join(dir, "trades.csv"))
	if err != nil {
		rf.Close()
		return nil, err
	}
	sf, err := os.Create(filepath.Join(dir, "snapshots.csv"))
	if err != nil {
		rf.Close()
		tf.Close()
		return nil, err
	}

	j := &CSV{
		runs:   csv.NewWriter(rf),
		trades: csv.NewWriter(tf),
		snaps:  csv.NewWriter(sf),
		rf:     rf, tf: tf, sf: sf,
	}

	for _, w := range []struct {
		writer *csv.Writer
		header []string
	}{
		{j.runs, runHeader},
		{j.trades, tradeHeader},
		{j.snaps, snapshotHeader},
	} {
		if err := w.writer.Write(w.header); err != nil {
			j.Close()
			return nil, err
		}
		w.writer.Flush()
		if err := w.writer.Error(); err != nil {
			j.Close()
			return nil, err
		}
	}

	return j, nil
}

func (j *CSV) RecordRun(r RunRecord) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Strategy,
		r.StartDate,
		r.EndDate,
		f(r.InitialCapital),
		f(r.FinalValue),
		f(r.TotalReturn),
		f(r.AnnualReturn),
		f(r.MaxDrawdown),
		f(r.SharpeRatio),
		f(r.WinRate),
		strconv.FormatInt(r.Trades, 10),
		strconv.FormatInt(r.Rejections, 10),
		r.CreatedAt,
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.RunID,
		t.Date,
		t.Symbol,
		t.Action,
		strconv.FormatInt(t.Quantity, 10),
		f(t.Price),
		f(t.Fill),
		f(t.Commission),
		f(t.StampTax),
		f(t.Slippage),
		f(t.CostBasis),
		f(t.CashAfter),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordSnapshot(s SnapshotRecord) error {
	err := j.snaps.Write([]string{
		s.RunID,
		s.Date,
		f(s.Cash),
		f(s.PositionsValue),
		f(s.TotalValue),
	})
	if err != nil {
		return err
	}
	j.snaps.Flush()
	return j.snaps.Error()
}

func (j *CSV) Close() error {
	for _, w := range []*csv.Writer{j.runs, j.trades, j.snaps} {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	for _, file := range []*os.File{j.rf, j.tf, j.sf} {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
