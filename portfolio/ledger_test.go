package portfolio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashare-backtest/market"
)

var (
	d1 = market.MustParseDate("2024-01-02")
	d2 = market.MustParseDate("2024-01-03")
	d3 = market.MustParseDate("2024-01-04")
)

// fakeQuote maps "symbol date" to a close price.
type fakeQuote map[string]float64

func (f fakeQuote) Close(symbol string, d market.Date) (float64, bool, error) {
	v, ok := f[symbol+" "+d.String()]
	return v, ok, nil
}

type errQuote struct{ err error }

func (q errQuote) Close(string, market.Date) (float64, bool, error) {
	return 0, false, q.err
}

// frictionless makes fills equal quotes so cost math is exact.
var frictionless = CostConfig{MaxPositions: 10}

func TestExecuteBuyCashFlow(t *testing.T) {
	l := NewLedger(testCosts, 100_000)

	tr, err := l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)

	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, 10.02, tr.Fill)
	assert.Equal(t, 5.0, tr.Commission)
	assert.Zero(t, tr.StampTax)
	assert.InDelta(t, 2.00, tr.Slippage, 1e-9)
	assert.InDelta(t, 98_993.00, l.Cash(), 1e-9)
	assert.Equal(t, l.Cash(), tr.CashAfter)

	pos, ok := l.Position("600519")
	require.True(t, ok)
	assert.Equal(t, int64(100), pos.Quantity)
	assert.Equal(t, 10.02, pos.AvgCost)
	assert.Equal(t, d1, pos.OpeningDate)
}

func TestExecuteSellCashFlow(t *testing.T) {
	l := NewLedger(testCosts, 100_000)
	_, err := l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)

	tr, err := l.Execute(Order{Symbol: "600519", Action: Sell, Quantity: 50, Price: 11.00}, d2)
	require.NoError(t, err)

	assert.Equal(t, 10.98, tr.Fill)           // 11.00 * 0.998
	assert.Equal(t, 5.0, tr.Commission)       // 549 * 0.0003 is under the floor
	assert.InDelta(t, 0.55, tr.StampTax, 1e-9)
	assert.Equal(t, 10.02, tr.CostBasis) // basis at time of sale
	assert.InDelta(t, 99_536.45, l.Cash(), 1e-9)

	pos, ok := l.Position("600519")
	require.True(t, ok)
	assert.Equal(t, int64(50), pos.Quantity)
	assert.Equal(t, 10.02, pos.AvgCost) // sells never touch the basis
}

func TestExecuteAveragesCostOnBuys(t *testing.T) {
	l := NewLedger(frictionless, 100_000)

	_, err := l.Execute(Order{Symbol: "000001", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)
	_, err = l.Execute(Order{Symbol: "000001", Action: Buy, Quantity: 100, Price: 12.00}, d2)
	require.NoError(t, err)

	pos, ok := l.Position("000001")
	require.True(t, ok)
	assert.Equal(t, int64(200), pos.Quantity)
	assert.Equal(t, 11.00, pos.AvgCost)
	assert.Equal(t, d1, pos.OpeningDate)
	assert.InDelta(t, 97_800.00, l.Cash(), 1e-9)
}

func TestExecuteInsufficientFundsLeavesLedgerUntouched(t *testing.T) {
	l := NewLedger(testCosts, 1_000)

	_, err := l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Equal(t, 1_000.00, l.Cash())
	assert.Empty(t, l.Positions())
	assert.Empty(t, l.Trades())
}

func TestExecuteInsufficientShares(t *testing.T) {
	l := NewLedger(frictionless, 100_000)

	_, err := l.Execute(Order{Symbol: "600519", Action: Sell, Quantity: 100, Price: 10.00}, d1)
	require.ErrorIs(t, err, ErrInsufficientShares)

	_, err = l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)
	_, err = l.Execute(Order{Symbol: "600519", Action: Sell, Quantity: 150, Price: 10.00}, d2)
	require.ErrorIs(t, err, ErrInsufficientShares)
}

func TestExecutePositionLimit(t *testing.T) {
	cfg := frictionless
	cfg.MaxPositions = 2
	l := NewLedger(cfg, 100_000)

	_, err := l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)
	_, err = l.Execute(Order{Symbol: "000001", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)

	// Third symbol is over the cap.
	_, err = l.Execute(Order{Symbol: "300750", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.ErrorIs(t, err, ErrPositionLimit)

	// Adding to an open symbol is never capped.
	_, err = l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	assert.NoError(t, err)
}

func TestSettledQuantityFollowsLots(t *testing.T) {
	l := NewLedger(frictionless, 100_000)

	_, err := l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)
	_, err = l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d2)
	require.NoError(t, err)

	assert.Zero(t, l.SettledQuantity("600519", d1))
	assert.Equal(t, int64(100), l.SettledQuantity("600519", d2))
	assert.Equal(t, int64(200), l.SettledQuantity("600519", d3))
	assert.Zero(t, l.SettledQuantity("000001", d3))

	// A 150-share sell consumes all of the first lot and half the second.
	_, err = l.Execute(Order{Symbol: "600519", Action: Sell, Quantity: 150, Price: 10.00}, d3)
	require.NoError(t, err)

	pos, ok := l.Position("600519")
	require.True(t, ok)
	assert.Equal(t, int64(50), pos.Quantity)
	assert.Equal(t, d2, pos.OpeningDate)
	assert.Equal(t, int64(50), l.SettledQuantity("600519", d3))
}

func TestFullSellRemovesPosition(t *testing.T) {
	l := NewLedger(frictionless, 100_000)
	_, err := l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)

	_, err = l.Execute(Order{Symbol: "600519", Action: Sell, Quantity: 100, Price: 10.00}, d2)
	require.NoError(t, err)

	_, ok := l.Position("600519")
	assert.False(t, ok)
	assert.Empty(t, l.Positions())
	assert.Len(t, l.Trades(), 2)
}

func TestExecuteRejectsMalformedOrders(t *testing.T) {
	l := NewLedger(frictionless, 100_000)

	_, err := l.Execute(Order{Symbol: "600519", Action: "hold", Quantity: 100, Price: 10}, d1)
	assert.Error(t, err)
	_, err = l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 0, Price: 10}, d1)
	assert.Error(t, err)
	_, err = l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 0}, d1)
	assert.Error(t, err)
}

func TestMarkToMarket(t *testing.T) {
	l := NewLedger(frictionless, 100_000)
	_, err := l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)

	snap, err := l.MarkToMarket(d1, fakeQuote{"600519 " + d1.String(): 11.00})
	require.NoError(t, err)
	assert.Equal(t, 99_000.00, snap.Cash)
	assert.Equal(t, 1_100.00, snap.PositionsValue)
	assert.Equal(t, 100_100.00, snap.TotalValue)

	// No close on d2: the position keeps its last known value.
	snap, err = l.MarkToMarket(d2, fakeQuote{})
	require.NoError(t, err)
	assert.Equal(t, 1_100.00, snap.PositionsValue)
	assert.Equal(t, 100_100.00, snap.TotalValue)

	// Fresh close on d3 revalues.
	snap, err = l.MarkToMarket(d3, fakeQuote{"600519 " + d3.String(): 12.50})
	require.NoError(t, err)
	assert.Equal(t, 1_250.00, snap.PositionsValue)
}

func TestMarkToMarketBeforeAnyClose(t *testing.T) {
	// Until a close is seen, a position is valued at its fill price.
	l := NewLedger(testCosts, 100_000)
	_, err := l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)

	snap, err := l.MarkToMarket(d1, fakeQuote{})
	require.NoError(t, err)
	assert.Equal(t, 1_002.00, snap.PositionsValue) // 100 shares at the 10.02 fill
}

func TestMarkToMarketPropagatesQuoteErrors(t *testing.T) {
	l := NewLedger(frictionless, 100_000)
	_, err := l.Execute(Order{Symbol: "600519", Action: Buy, Quantity: 100, Price: 10.00}, d1)
	require.NoError(t, err)

	gate := &market.TimeTravelError{Symbol: "600519", Requested: d2, Clock: d1}
	_, err = l.MarkToMarket(d2, errQuote{err: gate})
	var tt *market.TimeTravelError
	require.True(t, errors.As(err, &tt))
}
