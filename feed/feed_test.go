package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashare-backtest/market"
)

const barsJSONL = `{"symbol":"600000","date":"2024-01-02","open":"10.0000","high":"11.0000","low":"9.9000","close":"10.9800","prev_close":"10.0000","volume":1200000,"amount":"13056000.00","status":"trading","is_st":false}
{"symbol":"300750","date":"2024-01-02","open":"150.0000","high":"156.0000","low":"149.5000","close":"155.2500","prev_close":"150.0000","volume":0,"status":"suspended","is_st":true}
`

const sideJSONL = `{"symbol":"600000","date":"2024-01-02","name":"Pudong Dev","consensus_score":0.72,"note":"coverage: 18"}
{"symbol":"000720","date":"2024-01-02","name":"ST Energy","consensus_score":0.11}
`

func TestReadBars(t *testing.T) {
	t.Parallel()

	bars, err := ReadBars(strings.NewReader(barsJSONL))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	b := bars[0]
	assert.Equal(t, "600000", b.Symbol)
	assert.Equal(t, market.MustParseDate("2024-01-02"), b.Date)
	assert.Equal(t, 10.98, b.Close) // exact: parsed via decimal, not float
	assert.Equal(t, 10.00, b.PrevClose)
	assert.Equal(t, int64(1200000), b.Volume)
	assert.Equal(t, 13056000.00, b.Amount)
	assert.Equal(t, market.StatusTrading, b.Status)
	assert.False(t, b.IsST)

	halted := bars[1]
	assert.Equal(t, market.StatusSuspended, halted.Status)
	assert.True(t, halted.Suspended())
	assert.True(t, halted.IsST)
	assert.Zero(t, halted.Amount) // optional field omitted
}

func TestReadBarsSkipsBlankLines(t *testing.T) {
	t.Parallel()

	in := "\n\n" + barsJSONL + "\n"
	bars, err := ReadBars(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}

func TestReadBarsDefaultsStatusToTrading(t *testing.T) {
	t.Parallel()

	in := `{"symbol":"600000","date":"2024-01-02","open":"10.0000","high":"10.0000","low":"10.0000","close":"10.0000","prev_close":"10.0000","volume":100}`
	bars, err := ReadBars(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, market.StatusTrading, bars[0].Status)
}

func TestReadBarsReportsLineNumbers(t *testing.T) {
	t.Parallel()

	good := `{"symbol":"600000","date":"2024-01-02","open":"10.0000","high":"10.0000","low":"10.0000","close":"10.0000","prev_close":"10.0000","volume":100}`

	_, err := ReadBars(strings.NewReader(good + "\n{broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bars line 2")

	// Validation failures carry the line too: 5-digit symbol.
	bad := `{"symbol":"60000","date":"2024-01-02","open":"10.0000","high":"10.0000","low":"10.0000","close":"10.0000","prev_close":"10.0000","volume":100}`
	_, err = ReadBars(strings.NewReader(good + "\n" + good + "\n" + bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bars line 3")
}

func TestReadBarsRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	rows := map[string]string{
		"symbol not numeric": `{"symbol":"60000A","date":"2024-01-02","open":"10.0000","high":"10.0000","low":"10.0000","close":"10.0000","prev_close":"10.0000","volume":100}`,
		"bad date":           `{"symbol":"600000","date":"02/01/2024","open":"10.0000","high":"10.0000","low":"10.0000","close":"10.0000","prev_close":"10.0000","volume":100}`,
		"negative volume":    `{"symbol":"600000","date":"2024-01-02","open":"10.0000","high":"10.0000","low":"10.0000","close":"10.0000","prev_close":"10.0000","volume":-1}`,
		"unknown status":     `{"symbol":"600000","date":"2024-01-02","open":"10.0000","high":"10.0000","low":"10.0000","close":"10.0000","prev_close":"10.0000","volume":100,"status":"halted"}`,
		"missing close":      `{"symbol":"600000","date":"2024-01-02","open":"10.0000","high":"10.0000","low":"10.0000","prev_close":"10.0000","volume":100}`,
		"garbage price":      `{"symbol":"600000","date":"2024-01-02","open":"ten","high":"10.0000","low":"10.0000","close":"10.0000","prev_close":"10.0000","volume":100}`,
	}
	for name, row := range rows {
		t.Run(name, func(t *testing.T) {
			_, err := ReadBars(strings.NewReader(row))
			assert.Error(t, err)
		})
	}
}

func TestReadSide(t *testing.T) {
	t.Parallel()

	recs, err := ReadSide(strings.NewReader(sideJSONL))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "600000", recs[0].Symbol)
	assert.Equal(t, "Pudong Dev", recs[0].Name)
	assert.Equal(t, 0.72, recs[0].ConsensusScore)
	assert.Equal(t, "coverage: 18", recs[0].Note)

	assert.True(t, market.IsSTName(recs[1].Name))
}

func TestReadSideRejectsInvalidRecords(t *testing.T) {
	t.Parallel()

	_, err := ReadSide(strings.NewReader(`{"symbol":"600000","date":"2024-01-02","consensus_score":0.5}`))
	assert.Error(t, err, "name is required")

	_, err = ReadSide(strings.NewReader(`{"symbol":"600000","date":"2024-01-02","name":"Pudong Dev","consensus_score":-0.5}`))
	assert.Error(t, err, "negative score")
}

func TestDataKind(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"bars.jsonl":          kindBars,
		"bars_2024.jsonl.gz":  kindBars,
		"bars-sh.jsonl.xz":    kindBars,
		"side.jsonl":          kindSide,
		"side_extra.jsonl.gz": kindSide,
		"bars.csv":            "",
		"readme.md":           "",
		"side.jsonl.zst":      "",
		"notes.jsonl":         "",
	}
	for name, want := range cases {
		assert.Equal(t, want, dataKind(name), name)
	}
}
