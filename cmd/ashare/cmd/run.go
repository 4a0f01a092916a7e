package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ashare-backtest/backtest"
	"ashare-backtest/config"
	"ashare-backtest/export"
	"ashare-backtest/feed"
	"ashare-backtest/internal/logx"
	"ashare-backtest/journal"
	"ashare-backtest/market"
	"ashare-backtest/metrics"
	"ashare-backtest/portfolio"
	"ashare-backtest/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over a daily-bar dataset",
	Long: `Run a backtest using settings from a configuration file, flags, or both.
Flags override the corresponding config fields.

The dataset is a directory (or zip bundle) of JSONL files: *bars*.jsonl for
daily bars, *side*.jsonl for side records. Files may be gzip or xz compressed.

Supported strategies:
  noop       - never trades (dataset and cost-model dry runs)
  buy-hold   - buy each symbol once, hold to the end
  rebalance  - periodically rotate into the top consensus-score symbols
  ma-cross   - trade fast/slow EMA crossovers of the daily closes

Example:
  ashare run --data ./data --start 2024-01-02 --end 2024-06-28 \
    --capital 100000 --strategy buy-hold --db ./backtest.db`,
	RunE: runRun,
}

var (
	runConfigPath string
	runDataDir    string
	runArchive    string
	runStart      string
	runEnd        string
	runCapital    float64
	runStrategy   string
	runSymbols    []string
	runDBPath     string
	runCSVDir     string
	runExport     string
	runExportDir  string
	runLogLevel   string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVar(&runDataDir, "data", "", "directory of dataset files")
	runCmd.Flags().StringVar(&runArchive, "archive", "", "zip bundle of dataset files")
	runCmd.Flags().StringVar(&runStart, "start", "", "first replay date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "last replay date (YYYY-MM-DD)")
	runCmd.Flags().Float64Var(&runCapital, "capital", 0, "initial cash in CNY")
	runCmd.Flags().StringVar(&runStrategy, "strategy", "", "strategy name (noop, buy-hold, rebalance, ma-cross)")
	runCmd.Flags().StringSliceVar(&runSymbols, "symbols", nil, "symbols the strategy trades (default: every symbol in the dataset)")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "SQLite journal path")
	runCmd.Flags().StringVar(&runCSVDir, "csv-dir", "", "CSV journal directory")
	runCmd.Flags().StringVar(&runExport, "export", "", "export format after the run (csv, jsonl, parquet)")
	runCmd.Flags().StringVar(&runExportDir, "export-dir", "./export", "directory for exported files")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	start, err := market.ParseDate(cfg.Run.Start)
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	end, err := market.ParseDate(cfg.Run.End)
	if err != nil {
		return fmt.Errorf("end date: %w", err)
	}

	log := logx.New(cfg.Log.Level, os.Stderr)
	ctx := context.Background()

	ds, err := loadDataset(ctx, cfg.Data)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	store := market.NewStore()
	ds.ApplyTo(store)

	sc := cfg.Strategy
	if len(sc.Symbols) == 0 {
		sc.Symbols = store.Symbols()
	}
	decider, err := strategy.ByName(sc.Name, sc)
	if err != nil {
		return err
	}

	jnl, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}

	fmt.Printf("Running backtest: %s to %s\n", start, end)
	fmt.Printf("  Strategy: %s\n", cfg.Strategy.Name)
	fmt.Printf("  Capital:  %.2f CNY\n", cfg.Run.InitialCapital)
	fmt.Printf("  Symbols:  %d (%d bars)\n", len(sc.Symbols), len(ds.Bars))
	fmt.Println()

	ledger := portfolio.NewLedger(cfg.Costs.CostConfig(), cfg.Run.InitialCapital)
	opts := []backtest.Option{backtest.WithLogger(log)}
	if jnl != nil {
		opts = append(opts, backtest.WithJournal(jnl))
	}
	engine := backtest.New(store, ledger, opts...)

	res, err := engine.Run(ctx, start, end, decider)
	if jnl != nil {
		if cerr := jnl.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close journal: %w", cerr)
		}
	}
	if err != nil {
		return err
	}

	metrics.Fprint(os.Stdout, res.Summary)
	if n := len(res.Rejections); n > 0 {
		fmt.Printf("Rejected orders: %d (details in the log)\n\n", n)
	}
	switch {
	case cfg.Journal.DBPath != "" && cfg.Journal.CSVDir != "":
		fmt.Printf("Run %s saved to %s and %s\n", res.RunID, cfg.Journal.DBPath, cfg.Journal.CSVDir)
	case cfg.Journal.DBPath != "":
		fmt.Printf("Run %s saved to %s\n", res.RunID, cfg.Journal.DBPath)
	case cfg.Journal.CSVDir != "":
		fmt.Printf("Run %s saved to %s\n", res.RunID, cfg.Journal.CSVDir)
	}

	if runExport != "" {
		paths, err := exportResult(res, runExportDir, runExport)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Println("Exported:")
		for _, p := range paths {
			fmt.Printf("  - %s\n", p)
		}
	}
	return nil
}

// runConfig merges the config file (or defaults) with flag overrides and
// validates the result.
func loadRunConfig() (*config.Config, error) {
	var cfg *config.Config
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if runDataDir != "" {
		cfg.Data.Dir = runDataDir
		cfg.Data.Archive = ""
	}
	if runArchive != "" {
		cfg.Data.Archive = runArchive
		cfg.Data.Dir = ""
	}
	if runStart != "" {
		cfg.Run.Start = runStart
	}
	if runEnd != "" {
		cfg.Run.End = runEnd
	}
	if runCapital != 0 {
		cfg.Run.InitialCapital = runCapital
	}
	if runStrategy != "" {
		cfg.Strategy.Name = runStrategy
	}
	if len(runSymbols) > 0 {
		cfg.Strategy.Symbols = runSymbols
	}
	if runDBPath != "" {
		cfg.Journal.DBPath = runDBPath
	}
	if runCSVDir != "" {
		cfg.Journal.CSVDir = runCSVDir
	}
	if runLogLevel != "" {
		cfg.Log.Level = runLogLevel
	}

	if cfg.Run.Start == "" || cfg.Run.End == "" {
		return nil, fmt.Errorf("start and end dates are required (config file or --start/--end)")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadDataset(ctx context.Context, data config.DataConfig) (*feed.Dataset, error) {
	if data.Archive != "" {
		return feed.LoadArchive(ctx, data.Archive)
	}
	return feed.LoadDir(ctx, data.Dir)
}

// openJournal builds the persistence sink from the config: SQLite, CSV, both
// fanned out, or nil when neither is configured.
func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	var sinks []journal.Journal
	if jc.DBPath != "" {
		db, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, db)
	}
	if jc.CSVDir != "" {
		csv, err := journal.NewCSV(jc.CSVDir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, csv)
	}
	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return journal.Multi(sinks...), nil
	}
}

func exportResult(res *backtest.Result, dir, format string) ([]string, error) {
	trades := make([]journal.TradeRecord, 0, len(res.Trades))
	for _, t := range res.Trades {
		trades = append(trades, journal.NewTradeRecord(res.RunID, t))
	}
	snaps := make([]journal.SnapshotRecord, 0, len(res.Snapshots))
	for _, s := range res.Snapshots {
		snaps = append(snaps, journal.NewSnapshotRecord(res.RunID, s))
	}
	return export.Files(dir, format, trades, snaps)
}
