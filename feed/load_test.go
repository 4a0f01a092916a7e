package feed

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"ashare-backtest/market"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func writeXZ(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	xw, err := xz.NewWriter(f)
	require.NoError(t, err)
	_, err = xw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, xw.Close())
	require.NoError(t, f.Close())
}

func barLine(symbol, date, close string) string {
	return `{"symbol":"` + symbol + `","date":"` + date + `","open":"` + close + `","high":"` + close + `","low":"` + close + `","close":"` + close + `","prev_close":"` + close + `","volume":1000}` + "\n"
}

func TestOpenDecompresses(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	line := barLine("600000", "2024-01-02", "10.5000")
	writeFile(t, filepath.Join(dir, "bars.jsonl"), line)
	writeGzip(t, filepath.Join(dir, "bars.jsonl.gz"), line)
	writeXZ(t, filepath.Join(dir, "bars.jsonl.xz"), line)

	for _, name := range []string{"bars.jsonl", "bars.jsonl.gz", "bars.jsonl.xz"} {
		rc, err := Open(filepath.Join(dir, name))
		require.NoError(t, err, name)

		bars, err := ReadBars(rc)
		require.NoError(t, err, name)
		require.NoError(t, rc.Close(), name)

		require.Len(t, bars, 1, name)
		assert.Equal(t, 10.50, bars[0].Close, name)
	}
}

func TestOpenMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestLoadDirMergesAndSorts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "bars_sh.jsonl"),
		barLine("600000", "2024-01-03", "10.2000")+barLine("600000", "2024-01-02", "10.0000"))
	writeGzip(t, filepath.Join(dir, "bars_sz.jsonl.gz"), barLine("000001", "2024-01-02", "20.0000"))
	writeFile(t, filepath.Join(dir, "side.jsonl"),
		`{"symbol":"600000","date":"2024-01-02","name":"Pudong Dev","consensus_score":0.6}`+"\n")
	writeFile(t, filepath.Join(dir, "README.txt"), "not a dataset file")

	ds, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, ds.Bars, 3)
	assert.Equal(t, "000001", ds.Bars[0].Symbol)
	assert.Equal(t, "600000", ds.Bars[1].Symbol)
	assert.Equal(t, market.MustParseDate("2024-01-02"), ds.Bars[1].Date)
	assert.Equal(t, market.MustParseDate("2024-01-03"), ds.Bars[2].Date)

	require.Len(t, ds.Side, 1)
	assert.Equal(t, 0.6, ds.Side[0].ConsensusScore)
}

func TestLoadDirDeterministic(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	for _, sym := range []string{"600000", "000001", "300750", "688981"} {
		name := filepath.Join(dir, "bars_"+sym+".jsonl")
		writeFile(t, name, barLine(sym, "2024-01-02", "10.0000")+barLine(sym, "2024-01-03", "10.1000"))
	}

	first, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	second, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, first.Bars, second.Bars)
}

func TestLoadDirPropagatesParseErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "bars.jsonl"), "{broken\n")

	_, err := LoadDir(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bars.jsonl")
	assert.Contains(t, err.Error(), "line 1")
}

func TestLoadDirEmpty(t *testing.T) {
	t.Parallel()

	_, err := LoadDir(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no dataset files")
}

func TestLoadArchive(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "dataset.zip")

	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range map[string]string{
		"bundle/bars.jsonl": barLine("600000", "2024-01-02", "10.0000"),
		"bundle/side.jsonl": `{"symbol":"600000","date":"2024-01-02","name":"Pudong Dev","consensus_score":0.6}` + "\n",
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	ds, err := LoadArchive(context.Background(), zipPath)
	require.NoError(t, err)
	assert.Len(t, ds.Bars, 1)
	assert.Len(t, ds.Side, 1)
}

func TestDatasetApplyTo(t *testing.T) {
	t.Parallel()

	ds := &Dataset{
		Bars: []market.Bar{{
			Symbol: "600000", Date: market.MustParseDate("2024-01-02"),
			Open: 10, High: 10, Low: 10, Close: 10, PrevClose: 10,
			Volume: 100, Status: market.StatusTrading,
		}},
		Side: []market.SideRecord{{
			Symbol: "600000", Date: market.MustParseDate("2024-01-02"), Name: "Pudong Dev",
		}},
	}

	store := market.NewStore()
	ds.ApplyTo(store)

	bar, ok, err := store.Bar("600000", market.MustParseDate("2024-01-02"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 10.0, bar.Close)

	rec, ok, err := store.Side("600000", market.MustParseDate("2024-01-02"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Pudong Dev", rec.Name)
}
