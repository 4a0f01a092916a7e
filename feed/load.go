package feed

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xyproto/unzip"
	"golang.org/x/sync/errgroup"

	"ashare-backtest/market"
)

const loadWorkers = 4

const (
	kindBars = "bars"
	kindSide = "side"
)

// dataKind classifies a dataset file by name: bars*.jsonl[.gz|.xz] or
// side*.jsonl[.gz|.xz]. Anything else is skipped.
func dataKind(name string) string {
	base := strings.TrimSuffix(strings.TrimSuffix(name, ".gz"), ".xz")
	if !strings.HasSuffix(base, ".jsonl") {
		return ""
	}
	switch {
	case strings.HasPrefix(name, kindBars):
		return kindBars
	case strings.HasPrefix(name, kindSide):
		return kindSide
	}
	return ""
}

// LoadDir reads every dataset file under dir, recursively, a few files at a
// time. The merged dataset is sorted so the result does not depend on which
// file finished first.
func LoadDir(ctx context.Context, dir string) (*Dataset, error) {
	var barFiles, sideFiles []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch dataKind(d.Name()) {
		case kindBars:
			barFiles = append(barFiles, path)
		case kindSide:
			sideFiles = append(sideFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("feed: scan %s: %w", dir, err)
	}
	if len(barFiles)+len(sideFiles) == 0 {
		return nil, fmt.Errorf("feed: no dataset files under %s", dir)
	}

	var (
		mu sync.Mutex
		ds Dataset
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadWorkers)

	for _, path := range barFiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			bars, err := readBarsFile(path)
			if err != nil {
				return err
			}
			mu.Lock()
			ds.Bars = append(ds.Bars, bars...)
			mu.Unlock()
			return nil
		})
	}
	for _, path := range sideFiles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			recs, err := readSideFile(path)
			if err != nil {
				return err
			}
			mu.Lock()
			ds.Side = append(ds.Side, recs...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	ds.sort()
	return &ds, nil
}

// LoadArchive extracts a zip dataset bundle to a scratch directory and loads
// it like a plain directory.
func LoadArchive(ctx context.Context, zipPath string) (*Dataset, error) {
	tmp, err := os.MkdirTemp("", "ashare-dataset-*")
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := unzip.Extract(zipPath, tmp); err != nil {
		return nil, fmt.Errorf("feed: extract %s: %w", zipPath, err)
	}
	return LoadDir(ctx, tmp)
}

func readBarsFile(path string) ([]market.Bar, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	bars, err := ReadBars(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

func readSideFile(path string) ([]market.SideRecord, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	recs, err := ReadSide(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
