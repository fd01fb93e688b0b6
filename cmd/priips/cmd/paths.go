package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/priips/bootstrap"
	"github.com/rustyeddy/priips/config"
	"github.com/rustyeddy/priips/dates"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Simulate and cache path ensembles without evaluating products",
	Long: `Build the FMU and stressed path ensembles for every mapped currency
pair with historical data and persist them to the paths directory, so a
later run on the same trade date starts from the cache.

Example:
  priips paths -c settings.yaml --days 261`,
	RunE: runPaths,
}

var (
	pathsSettingsPath string
	pathsDays         int
)

func init() {
	rootCmd.AddCommand(pathsCmd)

	pathsCmd.Flags().StringVarP(&pathsSettingsPath, "config", "c", "", "path to settings file (YAML or JSON) (required)")
	pathsCmd.Flags().IntVar(&pathsDays, "days", 261, "path length in trading days")
	pathsCmd.MarkFlagRequired("config")
}

func runPaths(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(pathsSettingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if cfg.Indices.Source == "file" {
		return fmt.Errorf("paths pre-simulation supports generator mode only")
	}

	snap, err := loadSnapshot(cfg)
	if err != nil {
		return err
	}
	tradeDate, err := cfg.TradeDate()
	if err != nil {
		return err
	}
	dateID := dates.DateIdentifier(tradeDate)

	if err := os.MkdirAll(cfg.Output.PathsDir, 0755); err != nil {
		return fmt.Errorf("create paths dir: %w", err)
	}

	for pair := range cfg.Mapping {
		returns := bootstrap.LogReturns(snap.HistoricalByPair(pair))
		if len(returns) == 0 {
			fmt.Printf("skipping %s: no historical data\n", pair)
			continue
		}
		spot, err := snap.SpotByPair(pair)
		if err != nil {
			return err
		}

		b := &bootstrap.Builder{
			Pair:         pair,
			LogReturns:   returns,
			Spot:         spot,
			NSimulations: cfg.Run.NSimulations,
			Steps:        pathsDays,
			Workers:      cfg.Run.Workers,
		}

		fmu, err := b.BuildFMU(bootstrap.NewGeneratorSource(cfg.Run.RandomSeed, pair, bootstrap.FMU))
		if err != nil {
			return err
		}
		stressed, err := b.BuildStressed(
			bootstrap.NewGeneratorSource(cfg.Run.RandomSeed, pair, bootstrap.Stressed), 21)
		if err != nil {
			return err
		}

		fmuPath := bootstrap.PathFilename(cfg.Output.PathsDir, dateID, pair, bootstrap.FMU)
		sPath := bootstrap.PathFilename(cfg.Output.PathsDir, dateID, pair, bootstrap.Stressed)
		if err := bootstrap.WriteEnsembleCSV(fmuPath, fmu); err != nil {
			return err
		}
		if err := bootstrap.WriteEnsembleCSV(sPath, stressed); err != nil {
			return err
		}

		fmt.Printf("simulated %s: %d draws x %d days\n  - %s\n  - %s\n",
			pair, fmu.NSimulations(), fmu.Steps(), fmuPath, sPath)
	}

	return nil
}
