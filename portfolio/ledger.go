package portfolio

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/oklog/ulid/v2"

	"ashare-backtest/market"
)

// Execution rejections. These are recoverable: the engine records them and
// the replay continues.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrPositionLimit      = errors.New("position limit reached")
)

// Quoter supplies closing prices for valuation. The market store satisfies
// it; tests use small fakes.
type Quoter interface {
	Close(symbol string, d market.Date) (float64, bool, error)
}

// Snapshot is the end-of-day portfolio record. TotalValue = Cash +
// PositionsValue, all rounded to cents.
type Snapshot struct {
	Date           market.Date
	Cash           float64
	PositionsValue float64
	TotalValue     float64
}

// Ledger owns the cash balance, the open positions and the trade log for one
// run. It executes orders that already passed rule validation; its own guards
// (funds, shares, breadth cap) are the execution-stage rejections.
//
// Not safe for concurrent use; the replay is single threaded.
type Ledger struct {
	cfg       CostConfig
	cash      float64
	positions map[string]*Position
	trades    []Trade
}

// NewLedger returns a ledger holding initial cash and no positions.
func NewLedger(cfg CostConfig, initial float64) *Ledger {
	return &Ledger{
		cfg:       cfg,
		cash:      Round2(initial),
		positions: make(map[string]*Position),
	}
}

// Execute fills o on day d and returns the recorded trade.
//
// Buys fail with ErrInsufficientFunds when fill*qty+commission exceeds cash,
// and with ErrPositionLimit when they would open a new symbol past the
// breadth cap. Sells fail with ErrInsufficientShares when the held quantity
// is short. Rejected orders leave the ledger untouched.
func (l *Ledger) Execute(o Order, d market.Date) (Trade, error) {
	if !o.Action.Valid() {
		return Trade{}, fmt.Errorf("execute: unknown action %q", o.Action)
	}
	if o.Quantity <= 0 {
		return Trade{}, fmt.Errorf("execute %s %s: quantity %d must be positive", o.Action, o.Symbol, o.Quantity)
	}
	if o.Price <= 0 {
		return Trade{}, fmt.Errorf("execute %s %s: price %.4f must be positive", o.Action, o.Symbol, o.Price)
	}

	fill := l.cfg.FillPrice(o.Action, o.Price)
	amount := Round2(fill * float64(o.Quantity))
	commission := l.cfg.Commission(amount)
	tax := l.cfg.StampTax(o.Action, amount)

	t := Trade{
		ID:         ulid.Make().String(),
		Date:       d,
		Symbol:     o.Symbol,
		Action:     o.Action,
		Quantity:   o.Quantity,
		Price:      o.Price,
		Fill:       fill,
		Commission: commission,
		StampTax:   tax,
		Slippage:   Round2(math.Abs(fill-o.Price) * float64(o.Quantity)),
	}

	switch o.Action {
	case Buy:
		cost := Round2(amount + commission)
		if cost > l.cash {
			return Trade{}, fmt.Errorf("buy %d %s: cost %.2f, cash %.2f: %w",
				o.Quantity, o.Symbol, cost, l.cash, ErrInsufficientFunds)
		}
		pos, held := l.positions[o.Symbol]
		if !held {
			if l.cfg.MaxPositions > 0 && len(l.positions) >= l.cfg.MaxPositions {
				return Trade{}, fmt.Errorf("buy %s: %d symbols open: %w",
					o.Symbol, len(l.positions), ErrPositionLimit)
			}
			pos = &Position{Symbol: o.Symbol, AvgCost: fill, lastClose: fill}
			l.positions[o.Symbol] = pos
		} else {
			total := pos.Quantity + o.Quantity
			pos.AvgCost = Round2((pos.AvgCost*float64(pos.Quantity) + amount) / float64(total))
		}
		pos.Quantity += o.Quantity
		pos.addLot(o.Quantity, d)
		l.cash = Round2(l.cash - cost)
		t.CostBasis = pos.AvgCost

	case Sell:
		pos, held := l.positions[o.Symbol]
		if !held || pos.Quantity < o.Quantity {
			var have int64
			if held {
				have = pos.Quantity
			}
			return Trade{}, fmt.Errorf("sell %d %s: holding %d: %w",
				o.Quantity, o.Symbol, have, ErrInsufficientShares)
		}
		t.CostBasis = pos.AvgCost
		income := Round2(amount - commission - tax)
		l.cash = Round2(l.cash + income)
		pos.consume(o.Quantity)
		if pos.Quantity == 0 {
			delete(l.positions, o.Symbol)
		}
	}

	t.CashAfter = l.cash
	l.trades = append(l.trades, t)
	return t, nil
}

// SettledQuantity returns how many shares of symbol were bought strictly
// before d. Only those may be sold on d under T+1.
func (l *Ledger) SettledQuantity(symbol string, d market.Date) int64 {
	pos, ok := l.positions[symbol]
	if !ok {
		return 0
	}
	return pos.settledQty(d)
}

// MarkToMarket values every position at d's close and returns the day's
// snapshot. A symbol with no close for d keeps its last known price, so a
// halted or missing day never zeroes the position's contribution. The quoter
// error (a time-gate breach) is passed through untouched.
func (l *Ledger) MarkToMarket(d market.Date, q Quoter) (Snapshot, error) {
	var total float64
	for _, sym := range l.symbols() {
		pos := l.positions[sym]
		close, ok, err := q.Close(sym, d)
		if err != nil {
			return Snapshot{}, err
		}
		if ok {
			pos.lastClose = close
		}
		total += pos.MarketValue()
	}
	pv := Round2(total)
	return Snapshot{
		Date:           d,
		Cash:           l.cash,
		PositionsValue: pv,
		TotalValue:     Round2(l.cash + pv),
	}, nil
}

// Cash returns the current balance.
func (l *Ledger) Cash() float64 { return l.cash }

// Position returns a copy of the holding for symbol.
func (l *Ledger) Position(symbol string) (Position, bool) {
	pos, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Positions returns copies of all open positions sorted by symbol.
func (l *Ledger) Positions() []Position {
	out := make([]Position, 0, len(l.positions))
	for _, sym := range l.symbols() {
		out = append(out, *l.positions[sym])
	}
	return out
}

// Trades returns a copy of the trade log in execution order.
func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

func (l *Ledger) symbols() []string {
	syms := make([]string, 0, len(l.positions))
	for s := range l.positions {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	return syms
}
