package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/parquet-go/parquet-go"

	"ashare-backtest/journal"
)

type csvWriter struct{}

func (csvWriter) Extension() string { return "csv" }

func (csvWriter) WriteTrades(w io.Writer, recs []journal.TradeRecord) error {
	cw := csv.NewWriter(w)
	header := []string{"trade_id", "run_id", "date", "symbol", "action",
		"quantity", "price", "fill", "commission", "stamp_tax", "slippage",
		"cost_basis", "cash_after"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range recs {
		row := []string{
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
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (csvWriter) WriteSnapshots(w io.Writer, recs []journal.SnapshotRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "date", "cash", "positions_value", "total_value"}); err != nil {
		return err
	}
	for _, s := range recs {
		row := []string{s.RunID, s.Date, f(s.Cash), f(s.PositionsValue), f(s.TotalValue)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonlWriter struct{}

func (jsonlWriter) Extension() string { return "jsonl" }

func (jsonlWriter) WriteTrades(w io.Writer, recs []journal.TradeRecord) error {
	enc := json.NewEncoder(w)
	for _, t := range recs {
		if err := enc.Encode(t); err != nil {
			return err
		}
	}
	return nil
}

func (jsonlWriter) WriteSnapshots(w io.Writer, recs []journal.SnapshotRecord) error {
	enc := json.NewEncoder(w)
	for _, s := range recs {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}

type parquetWriter struct{}

func (parquetWriter) Extension() string { return "parquet" }

func (parquetWriter) WriteTrades(w io.Writer, recs []journal.TradeRecord) error {
	return parquet.Write(w, recs)
}

func (parquetWriter) WriteSnapshots(w io.Writer, recs []journal.SnapshotRecord) error {
	return parquet.Write(w, recs)
}

// f matches the journal CSV sink's float formatting.
func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
