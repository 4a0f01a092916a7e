// Package feed ingests the JSONL datasets the crawler side of the toolchain
// produces: bars*.jsonl for daily OHLCV rows and side*.jsonl for the
// reference records (names, consensus scores). Files may be gzip- or
// xz-compressed; whole directories and zip bundles load concurrently.
//
// Prices travel as 4-decimal strings and are parsed exactly before the
// float64 conversion, so 10.9800 never arrives as 10.979999.
package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ashare-backtest/market"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// scanBufSize caps one JSONL line; side notes can get long.
const scanBufSize = 1 << 20

// Dataset is the merged content of one data directory.
type Dataset struct {
	Bars []market.Bar
	Side []market.SideRecord
}

// ApplyTo loads the dataset into a store. Loading the same dataset twice is
// harmless; rows upsert by symbol and date.
func (d *Dataset) ApplyTo(s *market.Store) {
	s.LoadBars(d.Bars)
	s.LoadSide(d.Side)
}

// sort orders rows by symbol then date so merged multi-file loads are
// deterministic regardless of file completion order.
func (d *Dataset) sort() {
	sort.Slice(d.Bars, func(i, j int) bool {
		if d.Bars[i].Symbol != d.Bars[j].Symbol {
			return d.Bars[i].Symbol < d.Bars[j].Symbol
		}
		return d.Bars[i].Date.Before(d.Bars[j].Date)
	})
	sort.Slice(d.Side, func(i, j int) bool {
		if d.Side[i].Symbol != d.Side[j].Symbol {
			return d.Side[i].Symbol < d.Side[j].Symbol
		}
		return d.Side[i].Date.Before(d.Side[j].Date)
	})
}

type barRecord struct {
	Symbol    string `json:"symbol" validate:"required,len=6,numeric"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Open      string `json:"open" validate:"required"`
	High      string `json:"high" validate:"required"`
	Low       string `json:"low" validate:"required"`
	Close     string `json:"close" validate:"required"`
	PrevClose string `json:"prev_close" validate:"required"`
	Volume    int64  `json:"volume" validate:"gte=0"`
	Amount    string `json:"amount"`
	Status    string `json:"status" validate:"omitempty,oneof=trading suspended"`
	IsST      bool   `json:"is_st"`
}

type sideRecordJSON struct {
	Symbol         string  `json:"symbol" validate:"required,len=6,numeric"`
	Date           string  `json:"date" validate:"required,datetime=2006-01-02"`
	Name           string  `json:"name" validate:"required"`
	ConsensusScore float64 `json:"consensus_score" validate:"gte=0"`
	Note           string  `json:"note"`
}

// ReadBars parses one bars JSONL stream. Blank lines are skipped; any
// malformed or invalid line fails the whole read with its line number.
func ReadBars(r io.Reader) ([]market.Bar, error) {
	var out []market.Bar
	err := scanLines(r, func(line int, raw []byte) error {
		var rec barRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("feed: bars line %d: %w", line, err)
		}
		if err := validate.Struct(&rec); err != nil {
			return fmt.Errorf("feed: bars line %d: %w", line, err)
		}
		b, err := rec.toBar()
		if err != nil {
			return fmt.Errorf("feed: bars line %d: %w", line, err)
		}
		out = append(out, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadSide parses one side-records JSONL stream.
func ReadSide(r io.Reader) ([]market.SideRecord, error) {
	var out []market.SideRecord
	err := scanLines(r, func(line int, raw []byte) error {
		var rec sideRecordJSON
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("feed: side line %d: %w", line, err)
		}
		if err := validate.Struct(&rec); err != nil {
			return fmt.Errorf("feed: side line %d: %w", line, err)
		}
		d, err := market.ParseDate(rec.Date)
		if err != nil {
			return fmt.Errorf("feed: side line %d: %w", line, err)
		}
		out = append(out, market.SideRecord{
			Symbol:         rec.Symbol,
			Date:           d,
			Name:           rec.Name,
			ConsensusScore: rec.ConsensusScore,
			Note:           rec.Note,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanLines(r io.Reader, fn func(line int, raw []byte) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), scanBufSize)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		if err := fn(line, raw); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("feed: read: %w", err)
	}
	return nil
}

func (r barRecord) toBar() (market.Bar, error) {
	d, err := market.ParseDate(r.Date)
	if err != nil {
		return market.Bar{}, err
	}

	var prices [5]float64
	for i, f := range []struct {
		name  string
		value string
	}{
		{"open", r.Open},
		{"high", r.High},
		{"low", r.Low},
		{"close", r.Close},
		{"prev_close", r.PrevClose},
	} {
		prices[i], err = parsePrice(f.name, f.value)
		if err != nil {
			return market.Bar{}, err
		}
	}

	amount, err := parsePrice("amount", r.Amount)
	if err != nil {
		return market.Bar{}, err
	}

	status := market.StatusTrading
	if r.Status == string(market.StatusSuspended) {
		status = market.StatusSuspended
	}

	return market.Bar{
		Symbol:    r.Symbol,
		Date:      d,
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
		PrevClose: prices[4],
		Volume:    r.Volume,
		Amount:    amount,
		Status:    status,
		IsST:      r.IsST,
	}, nil
}

// parsePrice converts a decimal price string exactly. Empty means zero for
// optional fields.
func parsePrice(field, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, s, err)
	}
	return d.InexactFloat64(), nil
}
