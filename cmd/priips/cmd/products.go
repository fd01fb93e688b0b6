package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/priips/config"
	"github.com/rustyeddy/priips/dates"
	"github.com/rustyeddy/priips/engine"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Validate a product description file",
	Long: `Load the products file named by the settings, build every product and
pre-process it against the configured market data, reporting which
products would be excluded from a run and why.

Example:
  priips products -c settings.yaml`,
	RunE: runProducts,
}

var productsSettingsPath string

func init() {
	rootCmd.AddCommand(productsCmd)

	productsCmd.Flags().StringVarP(&productsSettingsPath, "config", "c", "", "path to settings file (YAML or JSON) (required)")
	productsCmd.MarkFlagRequired("config")
}

func runProducts(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(productsSettingsPath)
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

	cal := dates.NewEnglandCalendar()
	valid := 0
	for _, p := range products {
		if err := p.PreProcess(snap, cal); err != nil {
			fmt.Printf("✗ %s: %v\n", p.ID(), err)
			continue
		}
		fmt.Printf("✓ %s (%s, %d trading days)\n", p.ID(), p.Kind(), p.NTradingDaysRHP())
		valid++
	}

	fmt.Printf("\n%d of %d products valid\n", valid, len(products))
	if valid < len(products) {
		return fmt.Errorf("%d products failed validation", len(products)-valid)
	}
	return nil
}
