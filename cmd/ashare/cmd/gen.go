package cmd

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ashare-backtest/market"
	"ashare-backtest/portfolio"
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a synthetic daily-bar dataset",
	Long: `Write a small synthetic dataset for smoke runs and demos.

The dataset is a deterministic seeded random walk over four symbols:
  600000 - main board, 10% daily limit
  000001 - main board, with a five-day suspension stretch
  300750 - growth board, 20% daily limit
  600999 - ST symbol, 5% daily limit

Weekends are skipped. Bars land in bars.jsonl, side records (display names
and consensus scores) in side.jsonl.

Example:
  ashare gen --out ./data --start 2024-01-02 --days 60 --seed 42`,
	RunE: runGen,
}

var (
	genOutDir string
	genStart  string
	genDays   int
	genSeed   int64
)

func init() {
	rootCmd.AddCommand(genCmd)

	genCmd.Flags().StringVarP(&genOutDir, "out", "o", "./data", "output directory for the dataset")
	genCmd.Flags().StringVar(&genStart, "start", "2024-01-02", "first calendar date (YYYY-MM-DD)")
	genCmd.Flags().IntVar(&genDays, "days", 60, "number of trading days to generate")
	genCmd.Flags().Int64Var(&genSeed, "seed", 42, "random walk seed")
}

// genSymbol describes one synthetic listing. limit is the daily band the walk
// stays inside, matching what the board would enforce.
type genSymbol struct {
	symbol      string
	name        string
	base        float64
	drift       float64
	vol         float64
	limit       float64
	st          bool
	suspendFrom int
	suspendFor  int
}

type genBar struct {
	Symbol    string `json:"symbol"`
	Date      string `json:"date"`
	Open      string `json:"open"`
	High      string `json:"high"`
	Low       string `json:"low"`
	Close     string `json:"close"`
	PrevClose string `json:"prev_close"`
	Volume    int64  `json:"volume"`
	Amount    string `json:"amount,omitempty"`
	Status    string `json:"status"`
	IsST      bool   `json:"is_st"`
}

type genSide struct {
	Symbol         string  `json:"symbol"`
	Date           string  `json:"date"`
	Name           string  `json:"name"`
	ConsensusScore float64 `json:"consensus_score"`
	Note           string  `json:"note,omitempty"`
}

func runGen(cmd *cobra.Command, args []string) error {
	start, err := market.ParseDate(genStart)
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if genDays < 1 {
		return fmt.Errorf("days must be at least 1, got %d", genDays)
	}

	days := tradingDays(start, genDays)
	universe := []genSymbol{
		{symbol: "600000", name: "Pudong Dev Bank", base: 10.00, drift: 0.0004, vol: 0.015, limit: 0.10},
		{symbol: "000001", name: "Ping An Bank", base: 12.50, drift: 0.0002, vol: 0.018, limit: 0.10, suspendFrom: 20, suspendFor: 5},
		{symbol: "300750", name: "CATL Power", base: 55.00, drift: 0.0008, vol: 0.030, limit: 0.20},
		{symbol: "600999", name: "ST Energy", base: 4.20, drift: -0.0006, vol: 0.012, limit: 0.05, st: true},
	}

	rng := rand.New(rand.NewSource(genSeed))
	var bars []genBar
	var side []genSide
	for _, s := range universe {
		b, sr := genWalk(rng, s, days)
		bars = append(bars, b...)
		side = append(side, sr...)
	}

	if err := os.MkdirAll(genOutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	barsPath := filepath.Join(genOutDir, "bars.jsonl")
	sidePath := filepath.Join(genOutDir, "side.jsonl")
	if err := writeJSONL(barsPath, len(bars), func(i int) any { return bars[i] }); err != nil {
		return err
	}
	if err := writeJSONL(sidePath, len(side), func(i int) any { return side[i] }); err != nil {
		return err
	}

	fmt.Printf("✓ Wrote %d bars and %d side records for %d symbols\n", len(bars), len(side), len(universe))
	fmt.Printf("  - %s\n", barsPath)
	fmt.Printf("  - %s\n", sidePath)
	fmt.Println("\nRun a smoke backtest with:")
	fmt.Printf("  ashare run --data %s --start %s --end %s --strategy buy-hold\n",
		genOutDir, days[0], days[len(days)-1])
	return nil
}

// tradingDays returns n weekdays starting at start. Exchange holidays are not
// modelled; the replay treats missing bars and non-trading days the same way.
func tradingDays(start market.Date, n int) []market.Date {
	days := make([]market.Date, 0, n)
	for d := start; len(days) < n; d = d.Next() {
		wd := d.Time().Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

func genWalk(rng *rand.Rand, s genSymbol, days []market.Date) ([]genBar, []genSide) {
	bars := make([]genBar, 0, len(days))
	side := make([]genSide, 0, len(days))

	prev := portfolio.Round2(s.base)
	score := 0.3 + 0.4*rng.Float64()
	for i, d := range days {
		suspended := s.suspendFor > 0 && i >= s.suspendFrom && i < s.suspendFrom+s.suspendFor
		if suspended {
			bars = append(bars, genBar{
				Symbol:    s.symbol,
				Date:      d.String(),
				Open:      price4(prev),
				High:      price4(prev),
				Low:       price4(prev),
				Close:     price4(prev),
				PrevClose: price4(prev),
				Volume:    0,
				Status:    string(market.StatusSuspended),
				IsST:      s.st,
			})
			side = append(side, genSide{
				Symbol:         s.symbol,
				Date:           d.String(),
				Name:           s.name,
				ConsensusScore: math.Round(score*100) / 100,
				Note:           "trading suspended",
			})
			continue
		}

		// Moves stay inside the board's band so every generated bar is one
		// the exchange could actually have printed.
		band := s.limit * 0.95
		cls := portfolio.Round2(prev * (1 + clampMove(s.drift+rng.NormFloat64()*s.vol, band)))
		opn := portfolio.Round2(prev * (1 + clampMove(rng.NormFloat64()*s.vol/3, band)))
		limitUp := portfolio.Round2(prev * (1 + s.limit))
		limitDn := portfolio.Round2(prev * (1 - s.limit))
		high := math.Min(portfolio.Round2(math.Max(opn, cls)*(1+rng.Float64()*s.vol/2)), limitUp)
		low := math.Max(portfolio.Round2(math.Min(opn, cls)*(1-rng.Float64()*s.vol/2)), limitDn)
		volume := 2_000_000 + rng.Int63n(8_000_000)

		bars = append(bars, genBar{
			Symbol:    s.symbol,
			Date:      d.String(),
			Open:      price4(opn),
			High:      price4(high),
			Low:       price4(low),
			Close:     price4(cls),
			PrevClose: price4(prev),
			Volume:    volume,
			Amount:    fmt.Sprintf("%.4f", cls*float64(volume)),
			Status:    string(market.StatusTrading),
			IsST:      s.st,
		})

		score += rng.NormFloat64() * 0.04
		score = math.Min(math.Max(score, 0), 1)
		side = append(side, genSide{
			Symbol:         s.symbol,
			Date:           d.String(),
			Name:           s.name,
			ConsensusScore: math.Round(score*100) / 100,
		})
		prev = cls
	}
	return bars, side
}

func clampMove(r, band float64) float64 {
	if r > band {
		return band
	}
	if r < -band {
		return -band
	}
	return r
}

func price4(x float64) string {
	return fmt.Sprintf("%.4f", x)
}

func writeJSONL(path string, n int, row func(i int) any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	for i := 0; i < n; i++ {
		if err := enc.Encode(row(i)); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
