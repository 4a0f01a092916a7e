package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ashare-backtest/export"
	"ashare-backtest/journal"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a journaled run to CSV, JSONL or Parquet",
	Long: `Read a run from a SQLite journal and write its trades and snapshots
as flat files.

Without --run the most recent run is exported. Use --list to see what the
journal holds.

Examples:
  ashare export --db ./backtest.db --format parquet --out ./export
  ashare export --db ./backtest.db --run 01JF8Q0Z9GN1T5V2W3X4Y5Z6A7 --format csv
  ashare export --db ./backtest.db --list`,
	RunE: runExportCmd,
}

var (
	exportDBPath string
	exportRunID  string
	exportFormat string
	exportOutDir string
	exportOrg    string
	exportList   bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportDBPath, "db", "d", "./backtest.db", "path to SQLite journal DB")
	exportCmd.Flags().StringVar(&exportRunID, "run", "", "run ID to export (default: latest)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format (csv, jsonl, parquet)")
	exportCmd.Flags().StringVarP(&exportOutDir, "out", "o", "./export", "output directory")
	exportCmd.Flags().StringVar(&exportOrg, "org", "", "also write an org-mode run summary to this file")
	exportCmd.Flags().BoolVar(&exportList, "list", false, "list journaled runs and exit")
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(exportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	if exportList {
		return listRuns(j)
	}

	var run journal.RunRecord
	if exportRunID != "" {
		run, err = j.GetRun(exportRunID)
	} else {
		run, err = j.LatestRun()
	}
	if err != nil {
		return fmt.Errorf("find run: %w", err)
	}

	trades, err := j.ListTrades(run.RunID)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	snaps, err := j.ListSnapshots(run.RunID)
	if err != nil {
		return fmt.Errorf("query snapshots: %w", err)
	}

	paths, err := export.Files(exportOutDir, exportFormat, trades, snaps)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Printf("Exported run %s (%s, %s to %s):\n", run.RunID, run.Strategy, run.StartDate, run.EndDate)
	fmt.Printf("  %d trades, %d snapshots\n", len(trades), len(snaps))
	for _, p := range paths {
		fmt.Printf("  - %s\n", p)
	}

	if exportOrg != "" {
		if err := run.WriteOrg(exportOrg); err != nil {
			return fmt.Errorf("write org summary: %w", err)
		}
		fmt.Printf("  - %s\n", exportOrg)
	}
	return nil
}

func listRuns(j *journal.SQLite) error {
	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs in journal.")
		return nil
	}

	fmt.Printf("%-26s  %-12s  %-10s  %-10s  %10s  %8s\n",
		"RUN", "STRATEGY", "START", "END", "FINAL", "RETURN")
	for _, r := range runs {
		fmt.Printf("%-26s  %-12s  %-10s  %-10s  %10.2f  %7.2f%%\n",
			r.RunID, r.Strategy, r.StartDate, r.EndDate, r.FinalValue, r.TotalReturn*100)
	}
	return nil
}
