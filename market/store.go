package market

import (
	"fmt"
	"sort"
)

// TimeTravelError is returned when data dated after the simulation clock is
// requested. It is fatal: a strategy that sees tomorrow's prices invalidates
// the whole run.
type TimeTravelError struct {
	Symbol    string
	Requested Date
	Clock     Date
}

func (e *TimeTravelError) Error() string {
	return fmt.Sprintf("time travel violation: requested %s at %s but simulation clock is %s",
		e.Symbol, e.Requested, e.Clock)
}

// ErrClockRegression is returned by Advance when the clock would move
// backwards.
type ErrClockRegression struct {
	Clock Date
	To    Date
}

func (e *ErrClockRegression) Error() string {
	return fmt.Sprintf("clock regression: cannot advance from %s to %s", e.Clock, e.To)
}

// Store holds daily bars and side records for a single run and gates every
// read by the simulation clock. While the clock is unset (the bulk-load
// phase) any date may be read; once Advance has been called, reads dated
// after the clock fail with *TimeTravelError.
//
// Store is not safe for concurrent use. The replay is single threaded and
// the store belongs to one run.
type Store struct {
	bars     map[string]map[Date]Bar
	side     map[string]map[Date]SideRecord
	clock    Date
	clockSet bool
}

// NewStore returns an empty store with the clock unset.
func NewStore() *Store {
	return &Store{
		bars: make(map[string]map[Date]Bar),
		side: make(map[string]map[Date]SideRecord),
	}
}

// LoadBars upserts bars keyed by (symbol, date). Last write wins, so
// re-ingesting the same dataset leaves the store unchanged.
func (s *Store) LoadBars(bars []Bar) {
	for _, b := range bars {
		m, ok := s.bars[b.Symbol]
		if !ok {
			m = make(map[Date]Bar)
			s.bars[b.Symbol] = m
		}
		m[b.Date] = b
	}
}

// LoadSide upserts side records keyed by (symbol, date).
func (s *Store) LoadSide(recs []SideRecord) {
	for _, r := range recs {
		m, ok := s.side[r.Symbol]
		if !ok {
			m = make(map[Date]SideRecord)
			s.side[r.Symbol] = m
		}
		m[r.Date] = r
	}
}

// Advance moves the simulation clock to d. The clock is monotonically
// non-decreasing: advancing to an earlier date is an error.
func (s *Store) Advance(d Date) error {
	if s.clockSet && d.Before(s.clock) {
		return &ErrClockRegression{Clock: s.clock, To: d}
	}
	s.clock = d
	s.clockSet = true
	return nil
}

// Clock returns the simulation clock and whether it has been set.
func (s *Store) Clock() (Date, bool) { return s.clock, s.clockSet }

func (s *Store) gate(symbol string, d Date) error {
	if s.clockSet && d.After(s.clock) {
		return &TimeTravelError{Symbol: symbol, Requested: d, Clock: s.clock}
	}
	return nil
}

// Bar returns the bar for (symbol, d). Absent data is (zero, false, nil);
// a read past the clock is a *TimeTravelError.
func (s *Store) Bar(symbol string, d Date) (Bar, bool, error) {
	if err := s.gate(symbol, d); err != nil {
		return Bar{}, false, err
	}
	b, ok := s.bars[symbol][d]
	return b, ok, nil
}

// Side returns the side record for (symbol, d) through the same gate as Bar.
func (s *Store) Side(symbol string, d Date) (SideRecord, bool, error) {
	if err := s.gate(symbol, d); err != nil {
		return SideRecord{}, false, err
	}
	r, ok := s.side[symbol][d]
	return r, ok, nil
}

// Close returns the closing price for (symbol, d). It satisfies the quoting
// interface the ledger marks positions with.
func (s *Store) Close(symbol string, d Date) (float64, bool, error) {
	b, ok, err := s.Bar(symbol, d)
	if err != nil || !ok {
		return 0, false, err
	}
	return b.Close, true, nil
}

// Field returns one named value from the (symbol, d) bar: open, high, low,
// close, prev_close, volume or amount.
func (s *Store) Field(symbol string, d Date, field string) (float64, bool, error) {
	b, ok, err := s.Bar(symbol, d)
	if err != nil || !ok {
		return 0, false, err
	}
	switch field {
	case "open":
		return b.Open, true, nil
	case "high":
		return b.High, true, nil
	case "low":
		return b.Low, true, nil
	case "close":
		return b.Close, true, nil
	case "prev_close":
		return b.PrevClose, true, nil
	case "volume":
		return float64(b.Volume), true, nil
	case "amount":
		return b.Amount, true, nil
	default:
		return 0, false, fmt.Errorf("unknown bar field %q", field)
	}
}

// Symbols returns the symbols with at least one bar, sorted.
func (s *Store) Symbols() []string {
	out := make([]string, 0, len(s.bars))
	for sym := range s.bars {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Dates returns the bar dates for symbol in ascending order, ungated. It is
// meant for pre-run inspection (dataset summaries), not strategy use.
func (s *Store) Dates(symbol string) []Date {
	m := s.bars[symbol]
	out := make([]Date, 0, len(m))
	for d := range m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
