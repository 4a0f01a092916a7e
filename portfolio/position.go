package portfolio

import "ashare-backtest/market"

// lot is a settlement parcel: shares bought together on one day. Lots exist
// so T+1 checks can tell settled shares from ones bought the same day; cost
// accounting stays at the position level.
type lot struct {
	Quantity int64
	Date     market.Date
}

// Position is one symbol's holding. AvgCost is the quantity-weighted average
// fill price, recomputed on buys and left unchanged by sells. OpeningDate is
// the purchase date of the oldest open lot.
type Position struct {
	Symbol      string
	Quantity    int64
	AvgCost     float64
	OpeningDate market.Date

	lastClose float64 // valuation fallback when a day has no close
	lots      []lot
}

func (p *Position) addLot(qty int64, d market.Date) {
	p.lots = append(p.lots, lot{Quantity: qty, Date: d})
	p.OpeningDate = p.lots[0].Date
}

// consume removes qty shares from the oldest lots first. The caller
// guarantees qty <= p.Quantity.
func (p *Position) consume(qty int64) {
	remaining := qty
	for remaining > 0 && len(p.lots) > 0 {
		head := &p.lots[0]
		if head.Quantity > remaining {
			head.Quantity -= remaining
			remaining = 0
			break
		}
		remaining -= head.Quantity
		p.lots = p.lots[1:]
	}
	p.Quantity -= qty
	if len(p.lots) > 0 {
		p.OpeningDate = p.lots[0].Date
	}
}

// settledQty returns the shares purchased strictly before d. Under T+1 these
// are the only shares sellable on d.
func (p *Position) settledQty(d market.Date) int64 {
	var n int64
	for _, l := range p.lots {
		if l.Date.Before(d) {
			n += l.Quantity
		}
	}
	return n
}

// MarketValue is the position's contribution to portfolio value at the last
// known close.
func (p *Position) MarketValue() float64 {
	return Round2(p.lastClose * float64(p.Quantity))
}

// LastClose returns the price the position was last valued at.
func (p *Position) LastClose() float64 { return p.lastClose }
