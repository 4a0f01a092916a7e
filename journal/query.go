package journal

import (
	"database/sql"
	"fmt"
)

// GetRun returns the header row for one run.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var r RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, strategy, start_date, end_date, initial_capital, final_value,
		       total_return, annual_return, max_drawdown, sharpe_ratio, win_rate,
		       trades, rejections, created_at
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&r.RunID, &r.Strategy, &r.StartDate, &r.EndDate, &r.InitialCapital, &r.FinalValue,
		&r.TotalReturn, &r.AnnualReturn, &r.MaxDrawdown, &r.SharpeRatio, &r.WinRate,
		&r.Trades, &r.Rejections, &r.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return r, nil
}

// LatestRun returns the most recently created run.
func (j *SQLite) LatestRun() (RunRecord, error) {
	var id string
	err := j.db.QueryRow(`SELECT run_id FROM runs ORDER BY created_at DESC, run_id DESC LIMIT 1`).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("journal holds no runs")
		}
		return RunRecord{}, err
	}
	return j.GetRun(id)
}

// ListRuns returns all run headers, newest first.
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, strategy, start_date, end_date, initial_capital, final_value,
		       total_return, annual_return, max_drawdown, sharpe_ratio, win_rate,
		       trades, rejections, created_at
		FROM runs
		ORDER BY created_at DESC, run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.RunID, &r.Strategy, &r.StartDate, &r.EndDate, &r.InitialCapital, &r.FinalValue,
			&r.TotalReturn, &r.AnnualReturn, &r.MaxDrawdown, &r.SharpeRatio, &r.WinRate,
			&r.Trades, &r.Rejections, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTrades returns a run's trades in execution order.
func (j *SQLite) ListTrades(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, run_id, date, symbol, action, quantity, price, fill,
		       commission, stamp_tax, slippage, cost_basis, cash_after
		FROM trades
		WHERE run_id = ?
		ORDER BY date ASC, trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(
			&t.TradeID, &t.RunID, &t.Date, &t.Symbol, &t.Action, &t.Quantity, &t.Price, &t.Fill,
			&t.Commission, &t.StampTax, &t.Slippage, &t.CostBasis, &t.CashAfter,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListSnapshots returns a run's daily snapshots in date order.
func (j *SQLite) ListSnapshots(runID string) ([]SnapshotRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, date, cash, positions_value, total_value
		FROM snapshots
		WHERE run_id = ?
		ORDER BY date ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var s SnapshotRecord
		if err := rows.Scan(&s.RunID, &s.Date, &s.Cash, &s.PositionsValue, &s.TotalValue); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
