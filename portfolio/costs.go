package portfolio

import "math"

// CostConfig holds the transaction cost model and the portfolio breadth cap.
// Rates are fractions: 0.002 means 0.2%.
type CostConfig struct {
	SlippageRate   float64
	CommissionRate float64
	MinCommission  float64
	StampTaxRate   float64 // sell side only
	MaxPositions   int     // distinct symbols; <= 0 disables the cap
}

// Round2 rounds to cents. All cash, fills and fees pass through here so the
// ledger never accumulates sub-cent float dust.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// FillPrice applies slippage to the quoted price: buys fill above the quote,
// sells below, both rounded to cents.
func (c CostConfig) FillPrice(a Action, quote float64) float64 {
	if a == Buy {
		return Round2(quote * (1 + c.SlippageRate))
	}
	return Round2(quote * (1 - c.SlippageRate))
}

// Commission returns the commission on a trade amount (fill price times
// quantity), subject to the per-trade minimum.
func (c CostConfig) Commission(amount float64) float64 {
	fee := Round2(amount * c.CommissionRate)
	if fee < c.MinCommission {
		return c.MinCommission
	}
	return fee
}

// StampTax returns the stamp tax on a trade amount. Only sells are taxed.
func (c CostConfig) StampTax(a Action, amount float64) float64 {
	if a != Sell {
		return 0
	}
	return Round2(amount * c.StampTaxRate)
}
