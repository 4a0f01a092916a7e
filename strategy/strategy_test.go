package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashare-backtest/config"
)

func TestByName(t *testing.T) {
	dec, err := ByName("noop", config.StrategyConfig{})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, dec)

	dec, err = ByName("none", config.StrategyConfig{})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, dec)

	dec, err = ByName(" Buy-Hold ", config.StrategyConfig{Symbols: []string{"600000"}})
	require.NoError(t, err)
	bh, ok := dec.(*BuyHold)
	require.True(t, ok)
	assert.Equal(t, []string{"600000"}, bh.Symbols)

	dec, err = ByName("rebalance", config.StrategyConfig{
		Symbols: []string{"600000", "000001"},
		Every:   10,
		TopN:    2,
	})
	require.NoError(t, err)
	rb, ok := dec.(*Rebalance)
	require.True(t, ok)
	assert.Equal(t, 10, rb.Every)
	assert.Equal(t, 2, rb.TopN)

	dec, err = ByName("ma-cross", config.StrategyConfig{
		Symbols: []string{"600000"},
		Fast:    3,
		Slow:    8,
	})
	require.NoError(t, err)
	mc, ok := dec.(*MACross)
	require.True(t, ok)
	assert.Equal(t, 3, mc.Fast)
	assert.Equal(t, 8, mc.Slow)

	_, err = ByName("momentum", config.StrategyConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown strategy "momentum"`)
}

func TestStrategyNames(t *testing.T) {
	assert.Equal(t, "noop", Noop{}.Name())
	assert.Equal(t, "buy-hold", (&BuyHold{}).Name())
	assert.Equal(t, "rebalance", (&Rebalance{}).Name())
	assert.Equal(t, "ma-cross", (&MACross{}).Name())
}

func TestRoundLots(t *testing.T) {
	assert.Equal(t, int64(5000), roundLots(50_000, 10.00))
	assert.Equal(t, int64(2500), roundLots(50_000, 20.00))
	assert.Equal(t, int64(100), roundLots(1_500, 10.00))
	assert.Zero(t, roundLots(500, 10.00)) // one lot costs 1000
	assert.Zero(t, roundLots(1_000, 0))
	assert.Zero(t, roundLots(-1, 10.00))
}
