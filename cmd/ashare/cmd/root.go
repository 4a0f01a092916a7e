package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ashare",
	Short: "A-share daily-bar backtest engine",
	Long: `Ashare replays daily bars for Chinese A-share symbols and simulates
order execution under mainland market microstructure rules.

It provides tools for:
  - Backtesting strategies over a calendar date range
  - T+1 settlement, lot-size, suspension and price-limit checks
  - Slippage, commission and sell-side stamp tax accounting
  - Persisting trades and equity curves to SQLite or CSV
  - Exporting journaled runs to CSV, JSONL or Parquet
  - Generating synthetic datasets for smoke runs and demos`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
