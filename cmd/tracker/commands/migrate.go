package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the positions table",
	Long: `Apply the schema idempotently.

Example:
  go run ./cmd/tracker migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.db == nil {
		return fmt.Errorf("migrate needs DATABASE_URL; drop --position")
	}

	if err := a.db.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("❌ migrate: %w", err)
	}
	fmt.Println("✅ Schema up to date")
	return nil
}
