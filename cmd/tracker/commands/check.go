package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check database, Redis and market data connectivity",
	Long: `Verify every external dependency the tracker needs.

This command:
- loads config and masks DATABASE_URL
- pings PostgreSQL and shows pool statistics
- reports whether Redis is enabled
- validates a probe symbol with the configured vendor

Example:
  go run ./cmd/tracker check
  go run ./cmd/tracker check --symbol MSFT`,
	RunE: runCheck,
}

var checkSymbol string

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkSymbol, "symbol", "SPY", "symbol used to probe the market data vendor")
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stock Tracker Connectivity Check ===")

	a, err := newApp(cmd.Context())
	if err != nil {
		return fmt.Errorf("❌ %w", err)
	}
	defer a.Close()

	fmt.Printf("✅ Config loaded (ENV: %s, vendor: %s)\n", a.cfg.Env, a.cfg.MarketData.Vendor)

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	// Database
	if a.db != nil {
		fmt.Printf("   Database URL: %s\n", maskPassword(a.cfg.Database.URL))
		status, err := a.db.HealthCheck(ctx)
		if err != nil {
			return fmt.Errorf("❌ Health check failed: %w", err)
		}
		fmt.Println("✅ Database reachable")
		fmt.Printf("   Response Time: %v\n", status.ResponseTime)
		fmt.Printf("   Total Connections: %d\n", status.TotalConns)
		fmt.Printf("   Idle Connections: %d\n", status.IdleConns)
	} else {
		fmt.Println("⏭  Database skipped (ad-hoc positions)")
	}

	// Redis
	if a.redis.Enabled() {
		fmt.Printf("✅ Redis connected (%s:%s)\n", a.cfg.Redis.Host, a.cfg.Redis.Port)
	} else {
		fmt.Println("⏭  Redis disabled")
	}

	// Market data
	ok, err := a.port.ValidateSymbol(ctx, checkSymbol)
	if err != nil {
		return fmt.Errorf("❌ %s validate %s: %w", a.cfg.MarketData.Vendor, checkSymbol, err)
	}
	if !ok {
		return fmt.Errorf("❌ %s does not know %s", a.cfg.MarketData.Vendor, checkSymbol)
	}
	fmt.Printf("✅ %s answered for %s\n", a.cfg.MarketData.Vendor, strings.ToUpper(checkSymbol))

	fmt.Println("\n✅ All checks passed!")
	return nil
}

// maskPassword hides the password of a postgres URL: user:***@host
func maskPassword(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	creds, host, ok := strings.Cut(rest, "@")
	if !ok {
		return url
	}
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return url
	}
	return scheme + "://" + user + ":***@" + host
}
