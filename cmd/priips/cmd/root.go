package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "priips",
	Short: "KID performance-scenario calculator for FX structured products",
	Long: `Priips computes the four regulatory performance scenarios - Favourable,
Moderate, Unfavourable and Stressed - for a portfolio of FX-linked
structured products, following the bootstrap-resampling methodology.

It provides tools for:
  - Running the full scenario workflow from a settings file
  - Simulating and caching per-pair price-path ensembles
  - Validating product description files
  - Generating and validating settings files`,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	// Local .env overrides nothing that is already exported.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the CLI console logger honoring the verbose flag.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
