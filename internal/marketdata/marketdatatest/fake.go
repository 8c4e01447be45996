// Package marketdatatest provides an in-memory MarketDataPort for tests.
package marketdatatest

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/stocktracker/internal/contracts"
)

// Symbol scripts the responses for one ticker
type Symbol struct {
	Daily       []contracts.Bar
	Intraday    []contracts.Bar
	DailyErr    error
	IntradayErr error
	Delay       time.Duration // applied to every fetch, honoring ctx
	Panic       bool          // FetchDaily panics
}

// Port is a scripted contracts.MarketDataPort; unknown symbols fail with ErrSymbolNotFound
type Port struct {
	mu      sync.Mutex
	symbols map[string]Symbol
	calls   map[string]int
	order   []string
}

// New creates an empty fake port
func New() *Port {
	return &Port{
		symbols: make(map[string]Symbol),
		calls:   make(map[string]int),
	}
}

// Set scripts symbol's responses
func (p *Port) Set(symbol string, s Symbol) *Port {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.symbols[contracts.NormalizeSymbol(symbol)] = s
	return p
}

// Calls returns how many fetches were made for symbol
func (p *Port) Calls(symbol string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[contracts.NormalizeSymbol(symbol)]
}

// CompletionOrder lists symbols in the order their daily fetch finished
func (p *Port) CompletionOrder() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

func (p *Port) lookup(symbol string) (Symbol, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	symbol = contracts.NormalizeSymbol(symbol)
	p.calls[symbol]++
	s, ok := p.symbols[symbol]
	return s, ok
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// FetchDaily implements contracts.MarketDataPort
func (p *Port) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (contracts.Series, error) {
	s, ok := p.lookup(symbol)
	if !ok {
		return contracts.Series{}, contracts.NewFetchError("fake", symbol, contracts.ErrSymbolNotFound, nil)
	}
	if s.Panic {
		panic("fake: daily fetch exploded for " + symbol)
	}
	if err := wait(ctx, s.Delay); err != nil {
		return contracts.Series{}, contracts.NewFetchError("fake", symbol, contracts.ErrNetwork, err)
	}

	p.mu.Lock()
	p.order = append(p.order, contracts.NormalizeSymbol(symbol))
	p.mu.Unlock()

	if s.DailyErr != nil {
		return contracts.Series{}, s.DailyErr
	}
	return contracts.NewSeries(s.Daily), nil
}

// FetchIntraday implements contracts.MarketDataPort
func (p *Port) FetchIntraday(ctx context.Context, symbol string, start, end time.Time, includePrePost bool) (contracts.Series, error) {
	s, ok := p.lookup(symbol)
	if !ok {
		return contracts.Series{}, contracts.NewFetchError("fake", symbol, contracts.ErrSymbolNotFound, nil)
	}
	if err := ctx.Err(); err != nil {
		return contracts.Series{}, contracts.NewFetchError("fake", symbol, contracts.ErrNetwork, err)
	}
	if s.IntradayErr != nil {
		return contracts.Series{}, s.IntradayErr
	}
	return contracts.NewSeries(s.Intraday).Between(start, end), nil
}

// ValidateSymbol implements contracts.MarketDataPort
func (p *Port) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.symbols[contracts.NormalizeSymbol(symbol)]
	return ok, nil
}

// DailyBars builds consecutive daily bars ending on last, one per close
func DailyBars(last time.Time, closes ...float64) []contracts.Bar {
	out := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		out[i] = contracts.Bar{
			Timestamp: last.AddDate(0, 0, i-len(closes)+1),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    100,
		}
	}
	return out
}

// MinuteBars builds one-minute bars starting at start, one per close
func MinuteBars(start time.Time, closes ...float64) []contracts.Bar {
	out := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		out[i] = contracts.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    10,
		}
	}
	return out
}
