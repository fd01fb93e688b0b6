package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/priips/config"
	"github.com/rustyeddy/priips/engine"
	"github.com/rustyeddy/priips/market"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full scenario workflow from a settings file",
	Long: `Run the complete KID scenario workflow: load market data, build or
reload the path ensembles for every underlying currency pair, evaluate
all products and write the REO table, the attributes file and the
optional product log.

Example:
  priips run -c settings.yaml`,
	RunE: runRun,
}

var runSettingsPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runSettingsPath, "config", "c", "", "path to settings file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

// loadSnapshot loads market data from the configured store and binds it
// to the pair mapping.
func loadSnapshot(cfg *config.Settings) (*market.Snapshot, error) {
	var data *market.Data
	var err error

	switch cfg.MarketData.Source {
	case "csv":
		data, err = market.LoadCSVDir(cfg.MarketData.CSVDir)
	case "sqlite":
		var store *market.SQLiteStore
		store, err = market.OpenSQLite(cfg.MarketData.DBPath)
		if err != nil {
			break
		}
		defer store.Close()
		data, err = store.Load()
	default:
		err = fmt.Errorf("unknown market data source %q", cfg.MarketData.Source)
	}
	if err != nil {
		return nil, fmt.Errorf("load market data: %w", err)
	}

	return market.NewSnapshot(data, cfg.Mapping), nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runSettingsPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	snap, err := loadSnapshot(cfg)
	if err != nil {
		return err
	}

	tradeDate, err := cfg.TradeDate()
	if err != nil {
		return err
	}

	products, err := engine.LoadProducts(cfg.Run.ProductsFile, tradeDate)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	e := engine.New(cfg, snap, newLogger())
	res, err := e.Run(products)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	errored := 0
	for _, p := range res.Products {
		if p.Failed() {
			errored++
		}
	}

	fmt.Printf("Run %s complete\n", res.RunID)
	fmt.Printf("  Trade date: %s\n", res.TradeDate.Format("02/01/2006"))
	fmt.Printf("  Products: %d (%d errored)\n", len(res.Products), errored)
	fmt.Printf("  Pairs simulated: %v, from cache: %v\n", res.SimulatedPairs, res.CachedPairs)
	fmt.Printf("\nOutputs written to %s\n", cfg.Output.OutputDir)

	return nil
}
