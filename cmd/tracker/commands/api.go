package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stocktracker/internal/api"
	"github.com/wonny/stocktracker/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Endpoints (under API_PREFIX, default /api/v1):
  GET    /health
  GET    /positions?skip=&limit=
  POST   /positions?validate=true
  GET    /positions/{symbol}
  DELETE /positions/{symbol}
  GET    /positions/{symbol}/stats
  GET    /positions/premarket
  GET    /positions/premarket/summary
  GET    /positions/premarket/latest
  GET    /positions/premarket/stream   (websocket)

The premarket scheduler runs in-process unless --scheduler=false.

Example:
  go run ./cmd/tracker api
  go run ./cmd/tracker api --port 8080 --scheduler=false`,
	RunE: runAPIServer,
}

var (
	apiPort      string
	apiScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
	apiCmd.Flags().BoolVar(&apiScheduler, "scheduler", true, "run the premarket scheduler in-process")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stock Tracker API Server ===")

	// 1-7. Config, logger, store, vendor, service
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	a.log.WithFields(map[string]interface{}{
		"port":   a.cfg.Port,
		"env":    a.cfg.Env,
		"vendor": a.cfg.MarketData.Vendor,
	}).Info("Initializing API server")

	// 8. Scheduler and snapshot store
	sched, snapshots, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if apiScheduler {
		sched.Start()
		defer sched.Stop()
	}

	// 9. Create handlers
	h := api.Handlers{
		Positions: handlers.NewPositionHandler(a.service, a.log),
		Premarket: handlers.NewPremarketHandler(a.service, snapshots, a.log),
	}
	if a.db != nil {
		h.Health = handlers.NewHealthHandler(a.db, "stocktracker")
	} else {
		h.Health = handlers.NewHealthHandler(nil, "stocktracker")
	}

	// 10. Create router and server
	router := api.NewRouter(a.cfg.APIPrefix, h, a.log)
	server := api.New(a.cfg, a.log, router)

	// 11. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	a.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s%s\n", a.cfg.Port, a.cfg.APIPrefix)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
