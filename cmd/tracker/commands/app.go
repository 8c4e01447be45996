package commands

import (
	"context"
	"fmt"

	"github.com/wonny/stocktracker/internal/batch"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/marketdata"
	"github.com/wonny/stocktracker/internal/premarket"
	"github.com/wonny/stocktracker/internal/service"
	"github.com/wonny/stocktracker/internal/store"
	"github.com/wonny/stocktracker/pkg/config"
	"github.com/wonny/stocktracker/pkg/database"
	"github.com/wonny/stocktracker/pkg/logger"
	"github.com/wonny/stocktracker/pkg/redis"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB // nil for ad-hoc positions
	redis   *redis.Client
	window  premarket.Window
	port    contracts.MarketDataPort
	store   contracts.PositionStore
	service *service.StockService
}

// newApp wires config, logging, storage and market data.
// With --position flags the store is in memory and no database is opened.
func newApp(ctx context.Context) (*app, error) {
	adhoc, err := parsePositions(positions)
	if err != nil {
		return nil, err
	}

	// 1. Load config
	var cfg *config.Config
	if len(adhoc) > 0 {
		cfg, err = config.LoadOffline()
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	// 3. Premarket window
	a.window, err = premarket.WindowFromConfig(cfg.Premarket)
	if err != nil {
		return nil, fmt.Errorf("premarket window: %w", err)
	}

	// 4. Position store
	if len(adhoc) > 0 {
		a.store = store.NewMemoryStore(adhoc...)
	} else {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.store = store.NewPositionRepository(a.db.Pool)
	}

	// 5. Redis (optional)
	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		a.redis = redis.Disabled()
	}

	// 6. Market data vendor
	a.port, err = marketdata.New(cfg, a.redis, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("market data: %w", err)
	}

	// 7. Engines and service
	agg := premarket.NewAggregator(a.port, a.window)
	runner := batch.NewRunner(agg, batch.Config{
		Workers:      cfg.Batch.Workers,
		FetchTimeout: cfg.Batch.FetchTimeout,
	}, log)
	a.service = service.NewStockService(a.store, a.port, runner, a.window.Location, log)

	return a, nil
}

// Close releases database and Redis connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
