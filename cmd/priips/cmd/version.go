package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the priips CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("priips version %s\n", version)
		fmt.Println("KID performance-scenario calculator for FX structured products")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
