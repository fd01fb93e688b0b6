package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/market"
)

// Settings represents the complete scenario-run configuration
type Settings struct {
	Run        RunConfig      `json:"run" yaml:"run"`
	Indices    IndexConfig    `json:"indices" yaml:"indices"`
	MarketData MarketConfig   `json:"market_data" yaml:"market_data"`
	Output     OutputConfig   `json:"output" yaml:"output"`
	Mapping    market.Mapping `json:"mapping" yaml:"mapping"`
}

// RunConfig contains the run-wide scenario parameters
type RunConfig struct {
	TradeDate    string `json:"trade_date" yaml:"trade_date"` // DD/MM/YYYY
	RandomSeed   int64  `json:"random_seed" yaml:"random_seed"`
	NSimulations int    `json:"n_simulations" yaml:"n_simulations"`
	ProductsFile string `json:"products_file" yaml:"products_file"`
	Workers      int    `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// IndexConfig selects the resampling-index source
type IndexConfig struct {
	Source string `json:"source" yaml:"source"` // "file" or "generator"
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
}

// MarketConfig selects the market-data store
type MarketConfig struct {
	Source string `json:"source" yaml:"source"` // "csv" or "sqlite"
	CSVDir string `json:"csv_dir,omitempty" yaml:"csv_dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// OutputConfig contains output locations and toggles
type OutputConfig struct {
	PathsDir           string `json:"paths_dir" yaml:"paths_dir"`
	OutputDir          string `json:"output_dir" yaml:"output_dir"`
	WriteProductLog    bool   `json:"write_product_log,omitempty" yaml:"write_product_log,omitempty"`
	WritePayoffVectors bool   `json:"write_payoff_vectors,omitempty" yaml:"write_payoff_vectors,omitempty"`
}

// LoadFromFile loads settings from a file (YAML or JSON)
func LoadFromFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	cfg := &Settings{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse settings (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves settings to a file (JSON or YAML based on extension)
func (s *Settings) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// Validate checks if the settings are usable for a run
func (s *Settings) Validate() error {
	if _, err := dates.ParseTradeDate(s.Run.TradeDate); err != nil {
		return fmt.Errorf("run.trade_date must be DD/MM/YYYY: %w", err)
	}
	if s.Run.ProductsFile == "" {
		return fmt.Errorf("run.products_file is required")
	}
	switch s.Indices.Source {
	case "generator":
		if s.Run.NSimulations <= 0 {
			return fmt.Errorf("run.n_simulations must be positive in generator mode")
		}
	case "file":
		if s.Indices.File == "" {
			return fmt.Errorf("indices.file required for file source")
		}
	default:
		return fmt.Errorf("indices.source must be 'file' or 'generator'")
	}
	switch s.MarketData.Source {
	case "csv":
		if s.MarketData.CSVDir == "" {
			return fmt.Errorf("market_data.csv_dir required for CSV source")
		}
	case "sqlite":
		if s.MarketData.DBPath == "" {
			return fmt.Errorf("market_data.db_path required for SQLite source")
		}
	default:
		return fmt.Errorf("market_data.source must be 'csv' or 'sqlite'")
	}
	if s.Output.PathsDir == "" {
		return fmt.Errorf("output.paths_dir is required")
	}
	if s.Output.OutputDir == "" {
		return fmt.Errorf("output.output_dir is required")
	}
	if len(s.Mapping) == 0 {
		return fmt.Errorf("mapping must name at least one currency pair")
	}
	return nil
}

// TradeDate returns the parsed run trade date. Call Validate first.
func (s *Settings) TradeDate() (time.Time, error) {
	return dates.ParseTradeDate(s.Run.TradeDate)
}

// Default returns a runnable generator-mode configuration
func Default() *Settings {
	return &Settings{
		Run: RunConfig{
			TradeDate:    "03/02/2025",
			RandomSeed:   42,
			NSimulations: 10000,
			ProductsFile: "./products.json",
		},
		Indices: IndexConfig{
			Source: "generator",
		},
		MarketData: MarketConfig{
			Source: "csv",
			CSVDir: "./marketdata",
		},
		Output: OutputConfig{
			PathsDir:  "./paths",
			OutputDir: "./output",
		},
		Mapping: market.Mapping{
			"EURUSD": {
				YieldCurve: map[string]string{"EUR": "EUR-OIS", "USD": "USD-OIS"},
				VolCurve:   "EURUSD-VOL",
			},
		},
	}
}
