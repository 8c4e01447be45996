package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/store"
)

// positionsCmd represents the positions command
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Manage stored positions",
	Long: `List, add and remove positions.

Example:
  go run ./cmd/tracker positions list
  go run ./cmd/tracker positions add AAPL 10 150.25 --validate
  go run ./cmd/tracker positions add TSLA -5 200
  go run ./cmd/tracker positions remove AAPL
  go run ./cmd/tracker positions clear --yes`,
}

var (
	positionsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List positions",
		RunE:  listPositions,
	}

	positionsAddCmd = &cobra.Command{
		Use:   "add [symbol] [quantity] [entry_price]",
		Short: "Add a position",
		Args:  cobra.ExactArgs(3),
		RunE:  addPosition,
	}

	positionsRemoveCmd = &cobra.Command{
		Use:   "remove [symbol]",
		Short: "Remove a position",
		Args:  cobra.ExactArgs(1),
		RunE:  removePosition,
	}

	positionsClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every position",
		RunE:  clearPositions,
	}
)

var (
	listSkip    int
	listLimit   int
	listJSON    bool
	addValidate bool
	clearYes    bool
)

func init() {
	rootCmd.AddCommand(positionsCmd)
	positionsCmd.AddCommand(positionsListCmd)
	positionsCmd.AddCommand(positionsAddCmd)
	positionsCmd.AddCommand(positionsRemoveCmd)
	positionsCmd.AddCommand(positionsClearCmd)

	positionsListCmd.Flags().IntVar(&listSkip, "skip", 0, "positions to skip")
	positionsListCmd.Flags().IntVar(&listLimit, "limit", store.DefaultLimit, "maximum positions to list")
	positionsListCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")
	positionsAddCmd.Flags().BoolVar(&addValidate, "validate", false, "check the symbol with the market data vendor first")
	positionsClearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm removal of every position")
}

func listPositions(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.service.ListPositions(cmd.Context(), listSkip, listLimit)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}

	if listJSON {
		return printJSON(os.Stdout, list)
	}
	printPositions(os.Stdout, list)
	return nil
}

func addPosition(cmd *cobra.Command, args []string) error {
	qty, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("quantity %q: %w", args[1], err)
	}
	price, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("entry price %q: %w", args[2], err)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	pos, err := a.service.CreatePosition(cmd.Context(), contracts.Position{
		Symbol:     args[0],
		Quantity:   qty,
		EntryPrice: price,
	}, addValidate)
	if err != nil {
		return fmt.Errorf("❌ add position: %w", err)
	}

	fmt.Printf("✅ Added %s\n", pos.Symbol)
	return nil
}

func removePosition(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.service.DeletePosition(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("❌ remove position: %w", err)
	}

	fmt.Printf("✅ Removed %s\n", contracts.NormalizeSymbol(args[0]))
	return nil
}

func clearPositions(cmd *cobra.Command, args []string) error {
	if !clearYes {
		return fmt.Errorf("refusing to remove every position without --yes")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.service.ClearPositions(cmd.Context()); err != nil {
		return fmt.Errorf("❌ clear positions: %w", err)
	}

	fmt.Println("✅ All positions removed")
	return nil
}
