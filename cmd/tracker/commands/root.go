package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose   bool
	positions []string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Stock position tracker",
	Long: `Stock position tracker

Tracks positions and values them against daily and premarket bars.

Usage:
  go run ./cmd/tracker [command]

Examples:
  go run ./cmd/tracker api
  go run ./cmd/tracker positions add AAPL 10 150
  go run ./cmd/tracker stats AAPL
  go run ./cmd/tracker premarket
  go run ./cmd/tracker premarket --position AAPL=10@150 --position TSLA=-5@200`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringArrayVar(&positions, "position", nil,
		"ad-hoc position SYMBOL=QTY@PRICE, evaluated in memory without a database (repeatable)")
}
