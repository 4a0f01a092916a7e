package rules

import (
	"math"
	"strings"
)

// Daily price-limit ratios by board. The growth boards (STAR Market 688xxx,
// ChiNext 300xxx) are checked by prefix before the ST flag, so a growth-board
// symbol under special treatment still gets the 20% band.
const (
	RatioGrowth = 1.20
	RatioST     = 1.05
	RatioMain   = 1.10
)

// growthBoard reports whether symbol trades on a 20%-band board.
func growthBoard(symbol string) bool {
	return strings.HasPrefix(symbol, "688") || strings.HasPrefix(symbol, "300")
}

// BoardRatio returns the limit-up ratio for a symbol. Prefix wins over ST.
func BoardRatio(symbol string, isST bool) float64 {
	switch {
	case growthBoard(symbol):
		return RatioGrowth
	case isST:
		return RatioST
	default:
		return RatioMain
	}
}

// LimitPrices returns the day's limit-up and limit-down prices from the
// previous close, rounded to cents: up = prev*ratio, down = prev*(2-ratio).
func LimitPrices(prevClose float64, symbol string, isST bool) (up, down float64) {
	ratio := BoardRatio(symbol, isST)
	return round2(prevClose * ratio), round2(prevClose * (2 - ratio))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// sameCent reports whether two prices match to the cent. Prices one cent
// apart can differ by less than 0.01 in float64, so the band check compares
// rounded cents instead of a float tolerance.
func sameCent(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}
