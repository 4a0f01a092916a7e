// Package export renders journal records to interchange formats. The CSV
// and JSONL writers stream row by row; parquet buffers through
// parquet-go's generic writer. Column names match the SQLite journal schema
// in all three, so downstream notebooks can switch formats freely.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ashare-backtest/journal"
)

// Writer renders trade and snapshot records in one format.
type Writer interface {
	Extension() string
	WriteTrades(w io.Writer, recs []journal.TradeRecord) error
	WriteSnapshots(w io.Writer, recs []journal.SnapshotRecord) error
}

// New picks a writer by format name: csv, jsonl or parquet.
func New(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return csvWriter{}, nil
	case "jsonl":
		return jsonlWriter{}, nil
	case "parquet":
		return parquetWriter{}, nil
	default:
		return nil, fmt.Errorf("export: unsupported format %q (use csv, jsonl or parquet)", format)
	}
}

// Files writes trades.<ext> and snapshots.<ext> under dir and returns the
// paths it created. The directory is created when missing.
func Files(dir, format string, trades []journal.TradeRecord, snaps []journal.SnapshotRecord) ([]string, error) {
	w, err := New(format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	tradesPath := filepath.Join(dir, "trades."+w.Extension())
	if err := writeTo(tradesPath, func(f io.Writer) error {
		return w.WriteTrades(f, trades)
	}); err != nil {
		return nil, err
	}

	snapsPath := filepath.Join(dir, "snapshots."+w.Extension())
	if err := writeTo(snapsPath, func(f io.Writer) error {
		return w.WriteSnapshots(f, snaps)
	}); err != nil {
		return nil, err
	}

	return []string{tradesPath, snapsPath}, nil
}

func writeTo(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: close %s: %w", path, err)
	}
	return nil
}
