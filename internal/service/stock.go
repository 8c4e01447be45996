// Package service composes the position store, the market data port and the
// valuation engines into the operations exposed by the API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/wonny/stocktracker/internal/batch"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/valuation"
	"github.com/wonny/stocktracker/pkg/logger"
)

// listPage is the page size used when the whole portfolio is needed
const listPage = 500

// PremarketRunner computes one row per position, in order
type PremarketRunner interface {
	Run(ctx context.Context, positions []contracts.Position) []contracts.PremarketRow
}

// StockService is the single entry point for position operations
// ⭐ SSOT: HTTP handlers and CLI commands call this, never the store or port directly
type StockService struct {
	store  contracts.PositionStore
	port   contracts.MarketDataPort
	runner PremarketRunner
	loc    *time.Location
	now    func() time.Time
	logger *logger.Logger
}

// NewStockService creates a new StockService; loc is the exchange timezone
func NewStockService(
	store contracts.PositionStore,
	port contracts.MarketDataPort,
	runner PremarketRunner,
	loc *time.Location,
	log *logger.Logger,
) *StockService {
	if loc == nil {
		loc = time.UTC
	}
	return &StockService{
		store:  store,
		port:   port,
		runner: runner,
		loc:    loc,
		now:    time.Now,
		logger: log.WithComponent("stock_service"),
	}
}

// WithClock overrides the wall clock
func (s *StockService) WithClock(now func() time.Time) *StockService {
	s.now = now
	return s
}

// ListPositions returns one page of positions
func (s *StockService) ListPositions(ctx context.Context, skip, limit int) ([]contracts.Position, error) {
	return s.store.List(ctx, skip, limit)
}

// GetPosition returns the position for symbol or ErrNotFound
func (s *StockService) GetPosition(ctx context.Context, symbol string) (*contracts.Position, error) {
	return s.store.Get(ctx, symbol)
}

// CreatePosition validates and stores pos.
// With validateSymbol set, the vendor must recognise the ticker first.
func (s *StockService) CreatePosition(ctx context.Context, pos contracts.Position, validateSymbol bool) (*contracts.Position, error) {
	pos = pos.Normalized()

	if err := validatePosition(pos); err != nil {
		return nil, err
	}

	if validateSymbol {
		ok, err := s.port.ValidateSymbol(ctx, pos.Symbol)
		if err != nil {
			return nil, fmt.Errorf("validate symbol %s: %w", pos.Symbol, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: unknown symbol %s", contracts.ErrValidation, pos.Symbol)
		}
	}

	created, err := s.store.Create(ctx, pos)
	if err != nil {
		return nil, err
	}

	s.logger.WithSymbol(created.Symbol).WithFields(map[string]interface{}{
		"quantity":    created.Quantity,
		"entry_price": created.EntryPrice,
	}).Info("Position created")

	return created, nil
}

// DeletePosition removes symbol; a missing position is ErrNotFound
func (s *StockService) DeletePosition(ctx context.Context, symbol string) error {
	symbol = contracts.NormalizeSymbol(symbol)

	deleted, err := s.store.Delete(ctx, symbol)
	if err != nil {
		return err
	}
	if !deleted {
		return contracts.NotFound(symbol)
	}

	s.logger.WithSymbol(symbol).Info("Position deleted")
	return nil
}

// ClearPositions removes every position
func (s *StockService) ClearPositions(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("All positions cleared")
	return nil
}

// PositionStats values one stored position against its latest daily bars.
// Fetch failures propagate; no partial stats are returned.
func (s *StockService) PositionStats(ctx context.Context, symbol string) (*contracts.PositionStats, error) {
	pos, err := s.store.Get(ctx, symbol)
	if err != nil {
		return nil, err
	}

	start, end := valuation.DailyWindow(s.now().In(s.loc))

	daily, err := s.port.FetchDaily(ctx, pos.Symbol, start, end)
	if err != nil {
		s.logger.WithSymbol(pos.Symbol).WithError(err).Error("Daily fetch failed")
		if !errors.Is(err, contracts.ErrExternalService) {
			err = fmt.Errorf("%w: %v", contracts.ErrExternalService, err)
		}
		return nil, err
	}

	stats, err := valuation.ComputePositionStats(*pos, daily)
	if err != nil {
		s.logger.WithSymbol(pos.Symbol).WithError(err).Warn("Position stats unavailable")
		return nil, err
	}

	return stats, nil
}

// Premarket computes the premarket view for every stored position
func (s *StockService) Premarket(ctx context.Context) ([]contracts.PremarketRow, error) {
	positions, err := s.allPositions(ctx)
	if err != nil {
		return nil, err
	}

	return s.runner.Run(ctx, positions), nil
}

func (s *StockService) allPositions(ctx context.Context) ([]contracts.Position, error) {
	var all []contracts.Position
	for skip := 0; ; skip += listPage {
		page, err := s.store.List(ctx, skip, listPage)
		if err != nil {
			return nil, fmt.Errorf("list positions: %w", err)
		}
		all = append(all, page...)
		if len(page) < listPage {
			return all, nil
		}
	}
}

func validatePosition(pos contracts.Position) error {
	if pos.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", contracts.ErrValidation)
	}
	if !finite(pos.Quantity) {
		return fmt.Errorf("%w: quantity must be a finite number", contracts.ErrValidation)
	}
	if !finite(pos.EntryPrice) || pos.EntryPrice <= 0 {
		return fmt.Errorf("%w: entry_price must be positive", contracts.ErrValidation)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var _ PremarketRunner = (*batch.Runner)(nil)
