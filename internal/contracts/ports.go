package contracts

import (
	"context"
	"time"
)

// MarketDataPort supplies ordered bar series; one implementation per vendor.
// Failures are *FetchError values.
type MarketDataPort interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) (Series, error)
	FetchIntraday(ctx context.Context, symbol string, start, end time.Time, includePrePost bool) (Series, error)
	ValidateSymbol(ctx context.Context, symbol string) (bool, error)
}

// PositionStore owns position persistence.
// Get returns ErrNotFound, Create returns ErrValidation on duplicates.
type PositionStore interface {
	List(ctx context.Context, skip, limit int) ([]Position, error)
	Get(ctx context.Context, symbol string) (*Position, error)
	Create(ctx context.Context, pos Position) (*Position, error)
	Delete(ctx context.Context, symbol string) (bool, error)
	Clear(ctx context.Context) error
}
