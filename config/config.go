// Package config holds the file-based run configuration. Files load as YAML
// with a JSON fallback, so both `ashare config init` output and
// machine-generated JSON work.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ashare-backtest/market"
	"ashare-backtest/portfolio"
)

// Config is the complete run configuration.
type Config struct {
	Run      RunConfig      `json:"run" yaml:"run"`
	Costs    CostsConfig    `json:"costs" yaml:"costs"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// RunConfig sets the replay window and starting cash. Dates are optional in
// the file; the run command requires them from here or from flags.
type RunConfig struct {
	Start          string  `json:"start,omitempty" yaml:"start,omitempty"`
	End            string  `json:"end,omitempty" yaml:"end,omitempty"`
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
}

// CostsConfig mirrors the execution cost model.
type CostsConfig struct {
	SlippageRate   float64 `json:"slippage_rate" yaml:"slippage_rate"`
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	MinCommission  float64 `json:"min_commission" yaml:"min_commission"`
	StampTaxRate   float64 `json:"stamp_tax_rate" yaml:"stamp_tax_rate"`
	MaxPositions   int     `json:"max_positions" yaml:"max_positions"`
}

// CostConfig converts to the ledger's cost model.
func (c CostsConfig) CostConfig() portfolio.CostConfig {
	return portfolio.CostConfig{
		SlippageRate:   c.SlippageRate,
		CommissionRate: c.CommissionRate,
		MinCommission:  c.MinCommission,
		StampTaxRate:   c.StampTaxRate,
		MaxPositions:   c.MaxPositions,
	}
}

// DataConfig points at the dataset: a directory of JSONL files or a zip
// bundle, not both.
type DataConfig struct {
	Dir     string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Archive string `json:"archive,omitempty" yaml:"archive,omitempty"`
}

// JournalConfig selects persistence sinks. Both may be set; records fan out.
// Neither set means the run is not persisted.
type JournalConfig struct {
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	CSVDir string `json:"csv_dir,omitempty" yaml:"csv_dir,omitempty"`
}

// StrategyConfig names the decider and its universe. Every and TopN drive
// the rebalancer; Fast and Slow are the EMA periods of the crossover
// strategy. Unused fields are ignored by the other strategies.
type StrategyConfig struct {
	Name    string   `json:"name" yaml:"name"`
	Symbols []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Every   int      `json:"every,omitempty" yaml:"every,omitempty"`
	TopN    int      `json:"top_n,omitempty" yaml:"top_n,omitempty"`
	Fast    int      `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow    int      `json:"slow,omitempty" yaml:"slow,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile reads and validates a config file, trying YAML first and JSON
// second.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the config, YAML for .yaml/.yml paths and indented JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks field ranges and cross-field consistency.
func (c *Config) Validate() error {
	var start, end market.Date
	var err error

	if c.Run.Start != "" {
		if start, err = market.ParseDate(c.Run.Start); err != nil {
			return fmt.Errorf("run.start: %w", err)
		}
	}
	if c.Run.End != "" {
		if end, err = market.ParseDate(c.Run.End); err != nil {
			return fmt.Errorf("run.end: %w", err)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("run.end %s precedes run.start %s", c.Run.End, c.Run.Start)
	}
	if c.Run.InitialCapital <= 0 {
		return fmt.Errorf("run.initial_capital must be positive")
	}

	if c.Costs.SlippageRate < 0 || c.Costs.SlippageRate >= 1 {
		return fmt.Errorf("costs.slippage_rate must be in [0, 1)")
	}
	if c.Costs.CommissionRate < 0 || c.Costs.CommissionRate >= 1 {
		return fmt.Errorf("costs.commission_rate must be in [0, 1)")
	}
	if c.Costs.MinCommission < 0 {
		return fmt.Errorf("costs.min_commission must not be negative")
	}
	if c.Costs.StampTaxRate < 0 || c.Costs.StampTaxRate >= 1 {
		return fmt.Errorf("costs.stamp_tax_rate must be in [0, 1)")
	}
	if c.Costs.MaxPositions < 0 {
		return fmt.Errorf("costs.max_positions must not be negative")
	}

	if c.Data.Dir != "" && c.Data.Archive != "" {
		return fmt.Errorf("data.dir and data.archive are mutually exclusive")
	}

	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.Every < 0 {
		return fmt.Errorf("strategy.every must not be negative")
	}
	if c.Strategy.TopN < 0 {
		return fmt.Errorf("strategy.top_n must not be negative")
	}
	if c.Strategy.Fast < 0 {
		return fmt.Errorf("strategy.fast must not be negative")
	}
	if c.Strategy.Slow < 0 {
		return fmt.Errorf("strategy.slow must not be negative")
	}
	if c.Strategy.Fast > 0 && c.Strategy.Slow > 0 && c.Strategy.Fast >= c.Strategy.Slow {
		return fmt.Errorf("strategy.fast %d must be less than strategy.slow %d", c.Strategy.Fast, c.Strategy.Slow)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}

	return nil
}

// Default returns the configuration used when no file is given: the standard
// A-share retail cost model and a buy-and-hold run.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			InitialCapital: 100_000,
		},
		Costs: CostsConfig{
			SlippageRate:   0.002,
			CommissionRate: 0.0003,
			MinCommission:  5,
			StampTaxRate:   0.001,
			MaxPositions:   10,
		},
		Data: DataConfig{
			Dir: "./data",
		},
		Journal: JournalConfig{
			DBPath: "./backtest.db",
		},
		Strategy: StrategyConfig{
			Name: "buy-hold",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
