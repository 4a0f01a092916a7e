package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashare-backtest/journal"
)

func testTrades() []journal.TradeRecord {
	return []journal.TradeRecord{
		{
			RunID: "01HWRUN000000000000000000", TradeID: "01HWTRD000000000000000001",
			Date: "2024-01-02", Symbol: "600000", Action: "buy", Quantity: 100,
			Price: 10.00, Fill: 10.02, Commission: 5.00, StampTax: 0,
			Slippage: 2.00, CostBasis: 10.02, CashAfter: 98_993.00,
		},
		{
			RunID: "01HWRUN000000000000000000", TradeID: "01HWTRD000000000000000002",
			Date: "2024-01-03", Symbol: "600000", Action: "sell", Quantity: 50,
			Price: 11.00, Fill: 10.98, Commission: 5.00, StampTax: 0.55,
			Slippage: 1.00, CostBasis: 10.02, CashAfter: 99_536.45,
		},
	}
}

func testSnaps() []journal.SnapshotRecord {
	return []journal.SnapshotRecord{
		{RunID: "01HWRUN000000000000000000", Date: "2024-01-02", Cash: 98_993.00, PositionsValue: 1_002.00, TotalValue: 99_995.00},
		{RunID: "01HWRUN000000000000000000", Date: "2024-01-03", Cash: 99_536.45, PositionsValue: 549.00, TotalValue: 100_085.45},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"csv", "CSV", " jsonl ", "parquet"} {
		w, err := New(format)
		require.NoError(t, err, format)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(format)), w.Extension())
	}

	_, err := New("xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported format "xlsx"`)
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := New("csv")
	require.NoError(t, err)
	require.NoError(t, w.WriteTrades(&buf, testTrades()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"trade_id", "run_id", "date", "symbol", "action",
		"quantity", "price", "fill", "commission", "stamp_tax", "slippage",
		"cost_basis", "cash_after"}, rows[0])
	assert.Equal(t, []string{"01HWTRD000000000000000001", "01HWRUN000000000000000000",
		"2024-01-02", "600000", "buy", "100", "10.000000", "10.020000", "5.000000",
		"0.000000", "2.000000", "10.020000", "98993.000000"}, rows[1])

	buf.Reset()
	require.NoError(t, w.WriteSnapshots(&buf, testSnaps()))
	rows, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"run_id", "date", "cash", "positions_value", "total_value"}, rows[0])
	assert.Equal(t, "99995.000000", rows[1][4])
}

func TestJSONLWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := New("jsonl")
	require.NoError(t, err)
	require.NoError(t, w.WriteTrades(&buf, testTrades()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var rec journal.TradeRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "sell", rec.Action)
	assert.Equal(t, 10.98, rec.Fill)
	assert.Equal(t, 99_536.45, rec.CashAfter)
}

func TestParquetRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	paths, err := Files(dir, "parquet", testTrades(), testSnaps())
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "trades.parquet"),
		filepath.Join(dir, "snapshots.parquet"),
	}, paths)

	trades, err := parquet.ReadFile[journal.TradeRecord](paths[0])
	require.NoError(t, err)
	assert.Equal(t, testTrades(), trades)

	snaps, err := parquet.ReadFile[journal.SnapshotRecord](paths[1])
	require.NoError(t, err)
	assert.Equal(t, testSnaps(), snaps)
}

func TestFilesCSV(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "out") // Files must create it

	paths, err := Files(dir, "csv", testTrades(), testSnaps())
	require.NoError(t, err)
	require.Len(t, paths, 2)

	data, err := os.ReadFile(filepath.Join(dir, "trades.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "trade_id,run_id,date,"))

	data, err = os.ReadFile(filepath.Join(dir, "snapshots.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-01-03")
}

func TestFilesUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := Files(t.TempDir(), "yaml", nil, nil)
	assert.Error(t, err)
}
