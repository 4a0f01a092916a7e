package market

import "strings"

// TradingStatus marks whether a symbol traded on a given day.
type TradingStatus string

const (
	StatusTrading   TradingStatus = "trading"
	StatusSuspended TradingStatus = "suspended"
)

// Bar is one symbol-day of OHLCV data. Prices are CNY rounded to two
// decimals; Volume is shares, Amount is turnover in CNY.
type Bar struct {
	Symbol    string
	Date      Date
	Open      float64
	High      float64
	Low       float64
	Close     float64
	PrevClose float64
	Volume    int64
	Amount    float64
	Status    TradingStatus
	IsST      bool
}

// Suspended reports whether the bar marks a halted day.
func (b Bar) Suspended() bool { return b.Status == StatusSuspended }

// SideRecord carries per-symbol-day reference data that is not part of the
// OHLCV series: the display name (which encodes special-treatment flags) and
// the analyst consensus score used by ranking strategies.
type SideRecord struct {
	Symbol         string
	Date           Date
	Name           string
	ConsensusScore float64
	Note           string
}

// IsSTName reports whether a security display name carries a
// special-treatment prefix (ST, *ST or SST).
func IsSTName(name string) bool {
	name = strings.TrimSpace(name)
	return strings.HasPrefix(name, "ST") ||
		strings.HasPrefix(name, "*ST") ||
		strings.HasPrefix(name, "SST")
}
