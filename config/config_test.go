package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	td, err := cfg.TradeDate()
	require.NoError(t, err)
	assert.Equal(t, 2025, td.Year())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		file string
	}{
		{name: "yaml", file: "settings.yaml"},
		{name: "json", file: "settings.json"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.file)
			cfg := Default()
			cfg.Run.RandomSeed = 7
			cfg.Run.NSimulations = 500
			require.NoError(t, cfg.SaveToFile(path))

			got, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Run, got.Run)
			assert.Equal(t, cfg.Indices, got.Indices)
			assert.Equal(t, cfg.MarketData, got.MarketData)
			assert.Equal(t, cfg.Output, got.Output)
			assert.Equal(t, cfg.Mapping, got.Mapping)
		})
	}
}

func TestLoadJSONWithoutExtension(t *testing.T) {
	t.Parallel()

	// YAML parse is attempted first; plain JSON is valid YAML, and the
	// fallback covers anything the YAML parser rejects.
	path := filepath.Join(t.TempDir(), "settings.conf")
	cfg := Default()
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Run.TradeDate, got.Run.TradeDate)
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{name: "bad_trade_date", mutate: func(s *Settings) { s.Run.TradeDate = "2025-02-03" }},
		{name: "missing_products_file", mutate: func(s *Settings) { s.Run.ProductsFile = "" }},
		{name: "generator_needs_nsim", mutate: func(s *Settings) { s.Run.NSimulations = 0 }},
		{name: "unknown_index_source", mutate: func(s *Settings) { s.Indices.Source = "random" }},
		{name: "file_source_needs_file", mutate: func(s *Settings) { s.Indices.Source = "file" }},
		{name: "csv_source_needs_dir", mutate: func(s *Settings) { s.MarketData.CSVDir = "" }},
		{name: "sqlite_source_needs_path", mutate: func(s *Settings) { s.MarketData.Source = "sqlite" }},
		{name: "missing_paths_dir", mutate: func(s *Settings) { s.Output.PathsDir = "" }},
		{name: "missing_output_dir", mutate: func(s *Settings) { s.Output.OutputDir = "" }},
		{name: "empty_mapping", mutate: func(s *Settings) { s.Mapping = nil }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
