package portfolio

import "ashare-backtest/market"

// Trade is one executed order as the ledger recorded it.
//
// Fill is the post-slippage execution price; Slippage is the cash cost of
// the difference against the quote. CostBasis is the position's average cost
// at execution time: for sells it is the basis the trade realized against,
// which is what win-rate counts.
type Trade struct {
	ID         string
	Date       market.Date
	Symbol     string
	Action     Action
	Quantity   int64
	Price      float64 // quoted
	Fill       float64 // executed
	Commission float64
	StampTax   float64
	Slippage   float64
	CostBasis  float64
	CashAfter  float64
}

// Amount is the cash value of the fill before fees.
func (t Trade) Amount() float64 {
	return Round2(t.Fill * float64(t.Quantity))
}
