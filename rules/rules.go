// Package rules validates order intents against A-share market
// microstructure: round lots, suspension, T+1 settlement and daily price
// limits. Every rule is evaluated and every failure reported; callers get
// the full list of violations, not just the first.
package rules

import (
	"fmt"

	"ashare-backtest/portfolio"
)

// Violation codes.
const (
	CodeAction     = "action"
	CodeQuantity   = "quantity"
	CodeLotSize    = "lot-size"
	CodeOversell   = "oversell"
	CodeSuspended  = "suspended"
	CodeSettlement = "settlement"
	CodeLimitUp    = "limit-up"
	CodeLimitDown  = "limit-down"
)

// Violation is one failed rule.
type Violation struct {
	Code    string
	Message string
}

func (v Violation) String() string {
	return v.Code + ": " + v.Message
}

// Decision is the outcome of validating one order.
type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, format string, args ...any) {
	d.Violations = append(d.Violations, Violation{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// Reasons renders the violations as "code: message" strings.
func (d Decision) Reasons() []string {
	out := make([]string, len(d.Violations))
	for i, v := range d.Violations {
		out[i] = v.String()
	}
	return out
}

// MarketContext is what the order's trade date looked like for the symbol.
// HasBar false means the day has no market record; rules that need one are
// skipped rather than failed.
type MarketContext struct {
	HasBar    bool
	Close     float64 // current price
	PrevClose float64
	Suspended bool
	IsST      bool
}

// PositionContext is the holding state consulted by sell-side rules. Settled
// counts shares bought strictly before the trade date.
type PositionContext struct {
	Held    int64
	Settled int64
}

// Evaluate checks o against every rule and aggregates the violations.
//
// Buys must come in multiples of 100 shares; sells may be odd lots but not
// exceed the held quantity and, under T+1, not exceed the settled quantity.
// Suspended symbols reject both sides. A buy priced at the day's limit-up is
// rejected, as is a sell at limit-down; the 688/300 boards use the 20% band
// regardless of ST status.
func Evaluate(o portfolio.Order, mkt MarketContext, pos PositionContext) Decision {
	var d Decision

	if !o.Action.Valid() {
		d.add(CodeAction, "unknown action %q", o.Action)
	}

	if o.Quantity <= 0 {
		d.add(CodeQuantity, "quantity %d must be positive", o.Quantity)
	}

	if o.Action == portfolio.Buy && o.Quantity > 0 && o.Quantity%100 != 0 {
		d.add(CodeLotSize, "buy quantity %d is not a multiple of 100", o.Quantity)
	}

	if o.Action == portfolio.Sell && o.Quantity > 0 {
		if o.Quantity > pos.Held {
			d.add(CodeOversell, "sell %d exceeds held %d", o.Quantity, pos.Held)
		} else if pos.Held > 0 && pos.Settled < o.Quantity {
			d.add(CodeSettlement, "T+1: %d of %d shares settled", pos.Settled, o.Quantity)
		}
	}

	if mkt.HasBar && mkt.Suspended {
		d.add(CodeSuspended, "%s is suspended on the trade date", o.Symbol)
	}

	if mkt.HasBar && mkt.PrevClose > 0 {
		up, down := LimitPrices(mkt.PrevClose, o.Symbol, mkt.IsST)
		switch o.Action {
		case portfolio.Buy:
			if sameCent(mkt.Close, up) {
				d.add(CodeLimitUp, "price %.2f is at limit up %.2f", mkt.Close, up)
			}
		case portfolio.Sell:
			if sameCent(mkt.Close, down) {
				d.add(CodeLimitDown, "price %.2f is at limit down %.2f", mkt.Close, down)
			}
		}
	}

	d.Allowed = len(d.Violations) == 0
	return d
}
