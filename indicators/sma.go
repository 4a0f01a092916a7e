package indicators

import "fmt"

// SMA is a streaming simple moving average over the last period closes,
// kept in a ring buffer with a running sum.
type SMA struct {
	n      int
	window []float64
	next   int
	seen   int
	sum    float64

	name string
}

// NewSMA returns an SMA over period closes.
func NewSMA(period int) *SMA {
	if period <= 0 {
		panic("SMA period must be > 0")
	}
	return &SMA{
		n:      period,
		window: make([]float64, period),
		name:   fmt.Sprintf("SMA(%d)", period),
	}
}

func (s *SMA) Name() string { return s.name }
func (s *SMA) Warmup() int  { return s.n }
func (s *SMA) Ready() bool  { return s.seen >= s.n }

// Value returns the average of the closes seen so far, over at most the last
// period of them. Zero before any update.
func (s *SMA) Value() float64 {
	count := s.seen
	if count > s.n {
		count = s.n
	}
	if count == 0 {
		return 0
	}
	return s.sum / float64(count)
}

// Reset clears all state.
func (s *SMA) Reset() {
	for i := range s.window {
		s.window[i] = 0
	}
	s.next = 0
	s.seen = 0
	s.sum = 0
}

// Update consumes the next daily close, evicting the oldest once the window
// is full.
func (s *SMA) Update(close float64) {
	s.sum += close - s.window[s.next]
	s.window[s.next] = close
	s.next = (s.next + 1) % s.n
	s.seen++
}
