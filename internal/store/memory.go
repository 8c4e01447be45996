package store

import (
	"context"
	"sync"

	"github.com/wonny/stocktracker/internal/contracts"
)

// MemoryStore is an in-process contracts.PositionStore that keeps insertion order
type MemoryStore struct {
	mu        sync.RWMutex
	order     []string
	positions map[string]contracts.Position
}

// NewMemoryStore creates a store seeded with positions.
// Callers seeding from user input check for duplicates first; a repeated
// symbol keeps its first position.
func NewMemoryStore(positions ...contracts.Position) *MemoryStore {
	s := &MemoryStore{positions: make(map[string]contracts.Position)}
	for _, p := range positions {
		p = p.Normalized()
		if _, exists := s.positions[p.Symbol]; exists {
			continue
		}
		s.positions[p.Symbol] = p
		s.order = append(s.order, p.Symbol)
	}
	return s
}

// List implements contracts.PositionStore
func (s *MemoryStore) List(ctx context.Context, skip, limit int) ([]contracts.Position, error) {
	skip, limit = page(skip, limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contracts.Position, 0)
	for i := skip; i < len(s.order) && len(out) < limit; i++ {
		out = append(out, s.positions[s.order[i]])
	}
	return out, nil
}

// Get implements contracts.PositionStore
func (s *MemoryStore) Get(ctx context.Context, symbol string) (*contracts.Position, error) {
	symbol = contracts.NormalizeSymbol(symbol)

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.positions[symbol]
	if !ok {
		return nil, contracts.NotFound(symbol)
	}
	return &p, nil
}

// Create implements contracts.PositionStore
func (s *MemoryStore) Create(ctx context.Context, pos contracts.Position) (*contracts.Position, error) {
	pos = pos.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.positions[pos.Symbol]; exists {
		return nil, contracts.Duplicate(pos.Symbol)
	}
	s.positions[pos.Symbol] = pos
	s.order = append(s.order, pos.Symbol)
	return &pos, nil
}

// Delete implements contracts.PositionStore
func (s *MemoryStore) Delete(ctx context.Context, symbol string) (bool, error) {
	symbol = contracts.NormalizeSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.positions[symbol]; !ok {
		return false, nil
	}
	delete(s.positions, symbol)
	for i, sym := range s.order {
		if sym == symbol {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Clear implements contracts.PositionStore
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.positions = make(map[string]contracts.Position)
	return nil
}
