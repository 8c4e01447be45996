// Package store persists positions.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/stocktracker/internal/contracts"
)

// DefaultLimit is applied when List is called with limit <= 0
const DefaultLimit = 100

// PositionRepository implements contracts.PositionStore on PostgreSQL
type PositionRepository struct {
	db *pgxpool.Pool
}

// NewPositionRepository creates a new PositionRepository
func NewPositionRepository(db *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{db: db}
}

// List returns positions in insertion order
func (r *PositionRepository) List(ctx context.Context, skip, limit int) ([]contracts.Position, error) {
	skip, limit = page(skip, limit)

	query := `
		SELECT symbol, quantity, entry_price
		FROM positions
		ORDER BY created_at, symbol
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	positions := make([]contracts.Position, 0)
	for rows.Next() {
		var p contracts.Position
		if err := rows.Scan(&p.Symbol, &p.Quantity, &p.EntryPrice); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", err)
	}

	return positions, nil
}

// Get returns the position for symbol or ErrNotFound
func (r *PositionRepository) Get(ctx context.Context, symbol string) (*contracts.Position, error) {
	symbol = contracts.NormalizeSymbol(symbol)

	query := `
		SELECT symbol, quantity, entry_price
		FROM positions
		WHERE symbol = $1
	`

	var p contracts.Position
	err := r.db.QueryRow(ctx, query, symbol).Scan(&p.Symbol, &p.Quantity, &p.EntryPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.NotFound(symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("query position %s: %w", symbol, err)
	}

	return &p, nil
}

// Create inserts pos; an existing symbol is a validation error
func (r *PositionRepository) Create(ctx context.Context, pos contracts.Position) (*contracts.Position, error) {
	pos = pos.Normalized()

	query := `
		INSERT INTO positions (symbol, quantity, entry_price, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (symbol) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, pos.Symbol, pos.Quantity, pos.EntryPrice)
	if err != nil {
		return nil, fmt.Errorf("insert position %s: %w", pos.Symbol, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, contracts.Duplicate(pos.Symbol)
	}

	return &pos, nil
}

// Delete removes symbol and reports whether it existed
func (r *PositionRepository) Delete(ctx context.Context, symbol string) (bool, error) {
	symbol = contracts.NormalizeSymbol(symbol)

	tag, err := r.db.Exec(ctx, `DELETE FROM positions WHERE symbol = $1`, symbol)
	if err != nil {
		return false, fmt.Errorf("delete position %s: %w", symbol, err)
	}

	return tag.RowsAffected() > 0, nil
}

// Clear removes every position
func (r *PositionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}
	return nil
}

func page(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return skip, limit
}
