package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/priips/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate settings files",
	Long: `Manage settings files for scenario runs.

Subcommands:
  init     - Generate a default settings file
  validate - Validate an existing settings file

Examples:
  priips config init -o settings.yaml
  priips config validate -f settings.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default settings file",
	Long: `Create a new settings file with a runnable generator-mode default.

Example:
  priips config init -o settings.yaml`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a settings file",
	Long: `Check if a settings file is valid and can be loaded.

Example:
  priips config validate -f settings.yaml`,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "settings.yaml", "output settings file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to settings file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	fmt.Printf("✓ Created default settings: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  priips run -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Settings valid: %s\n", configValidatePath)
	fmt.Printf("  Trade date: %s\n", cfg.Run.TradeDate)
	fmt.Printf("  Indices: %s\n", cfg.Indices.Source)
	fmt.Printf("  Market data: %s\n", cfg.MarketData.Source)
	fmt.Printf("  Pairs mapped: %d\n", len(cfg.Mapping))
	return nil
}
