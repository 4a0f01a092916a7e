// Package indicators provides streaming moving averages over daily closing
// prices. Each indicator is fed one close at a time and reports Ready only
// after a full warmup period, which keeps strategies from acting on
// half-formed values at the start of a replay.
package indicators

import "fmt"

// EMA is a streaming exponential moving average over daily closes. It seeds
// from the first value and reports Ready once it has seen a full period, so
// early values never leak into trading decisions.
type EMA struct {
	n     int
	alpha float64

	seen  int
	value float64
	ready bool

	name string
}

// NewEMA returns an EMA with the standard 2/(n+1) smoothing factor.
func NewEMA(period int) *EMA {
	if period <= 0 {
		panic("EMA period must be > 0")
	}
	return &EMA{
		n:     period,
		alpha: 2.0 / float64(period+1),
		name:  fmt.Sprintf("EMA(%d)", period),
	}
}

func (e *EMA) Name() string   { return e.name }
func (e *EMA) Warmup() int    { return e.n }
func (e *EMA) Ready() bool    { return e.ready }
func (e *EMA) Value() float64 { return e.value }

// Reset clears all state, as if no closes had been seen.
func (e *EMA) Reset() {
	e.seen = 0
	e.value = 0
	e.ready = false
}

// Update consumes the next daily close.
func (e *EMA) Update(close float64) {
	e.seen++
	if e.seen == 1 {
		e.value = close
	} else {
		e.value = e.alpha*close + (1.0-e.alpha)*e.value
	}
	if e.seen >= e.n {
		e.ready = true
	}
}
