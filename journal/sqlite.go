package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite journals runs, trades and snapshots into a single database file.
// One file can hold many runs; rows are keyed by run_id.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, strategy, start_date, end_date, initial_capital, final_value,
		 total_return, annual_return, max_drawdown, sharpe_ratio, win_rate,
		 trades, rejections, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Strategy, r.StartDate, r.EndDate, r.InitialCapital, r.FinalValue,
		r.TotalReturn, r.AnnualReturn, r.MaxDrawdown, r.SharpeRatio, r.WinRate,
		r.Trades, r.Rejections, r.CreatedAt,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, date, symbol, action, quantity, price, fill,
		 commission, stamp_tax, slippage, cost_basis, cash_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Date, t.Symbol, t.Action, t.Quantity, t.Price, t.Fill,
		t.Commission, t.StampTax, t.Slippage, t.CostBasis, t.CashAfter,
	)
	return err
}

func (j *SQLite) RecordSnapshot(s SnapshotRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO snapshots
		(run_id, date, cash, positions_value, total_value)
		VALUES (?, ?, ?, ?, ?)`,
		s.RunID, s.Date, s.Cash, s.PositionsValue, s.TotalValue,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
