package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats [symbol]",
	Short: "Value one position against its latest daily bars",
	Long: `Show cost, value, P/L and the previous and current session for one position.

Example:
  go run ./cmd/tracker stats AAPL
  go run ./cmd/tracker stats AAPL --position AAPL=10@150 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

var statsJSON bool

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.service.PositionStats(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("❌ analyze position: %w", err)
	}

	if statsJSON {
		return printJSON(os.Stdout, stats)
	}
	printStats(os.Stdout, stats)
	return nil
}
