package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// premarketCmd represents the premarket command
var premarketCmd = &cobra.Command{
	Use:   "premarket",
	Short: "Compute the premarket view for every position",
	Long: `Fetch daily and extended-hours bars for every position concurrently and
print one row per symbol. Symbols without premarket data or with a failed
fetch are reported inline without failing the batch.

Example:
  go run ./cmd/tracker premarket
  go run ./cmd/tracker premarket --position AAPL=10@150 --position TSLA=-5@200
  go run ./cmd/tracker premarket --json`,
	RunE: runPremarket,
}

var premarketJSON bool

func init() {
	rootCmd.AddCommand(premarketCmd)

	premarketCmd.Flags().BoolVar(&premarketJSON, "json", false, "print JSON")
}

func runPremarket(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	rows, err := a.service.Premarket(cmd.Context())
	if err != nil {
		return fmt.Errorf("❌ premarket: %w", err)
	}

	if premarketJSON {
		return printJSON(os.Stdout, rows)
	}

	printPremarket(os.Stdout, rows)
	fmt.Printf("computed in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}
