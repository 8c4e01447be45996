// Package premarket computes premarket-adjusted movement for a position by
// combining a daily window (previous close, today's open) with intraday bars
// restricted to the premarket window.
package premarket

import (
	"context"
	"time"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/format"
)

// DailyLookback spans a long weekend so the last two sessions are present
const DailyLookback = 7 * 24 * time.Hour

// ComputeRow derives one premarket row from already-fetched series.
//
// daily must hold at least two bars: Previous() is the prior close and
// Latest() supplies today's open. premarket must already be restricted to the
// premarket window; its latest close is the current price.
func ComputeRow(symbol string, quantity, entryPrice float64, daily, premarket contracts.Series) contracts.PremarketRow {
	symbol = contracts.NormalizeSymbol(symbol)

	if !format.ValidDenominator(entryPrice) {
		return contracts.ErrorRow(symbol, quantity, entryPrice, contracts.InvalidEntryPrice(symbol))
	}

	if daily.RequireLen(2) != nil || premarket.Len() == 0 {
		return contracts.NoDataRow(symbol, quantity, entryPrice)
	}

	prev, _ := daily.Previous()
	today, _ := daily.Latest()
	quote, _ := premarket.Latest()

	current := quote.Close
	changePct, ok := format.PctChange(prev.Close, current)
	if !ok {
		return contracts.NoDataRow(symbol, quantity, entryPrice)
	}
	plPct, _ := format.PctChange(entryPrice, current)

	return contracts.SuccessRow(symbol, quantity, entryPrice, contracts.PremarketMetrics{
		PrevClose:      prev.Close,
		TodayOpen:      today.Open,
		CurrentPrice:   current,
		TodayChange:    current - prev.Close,
		TodayChangePct: changePct,
		PositionPL:     quantity * (current - entryPrice),
		PositionPLPct:  plPct,
		TotalValue:     quantity * current,
	})
}

// Aggregator fetches the two series for a symbol and computes its row.
// Fetch failures come back as Error rows, never as errors.
type Aggregator struct {
	port   contracts.MarketDataPort
	window Window
	now    func() time.Time
}

// NewAggregator creates an Aggregator reading from port
func NewAggregator(port contracts.MarketDataPort, window Window) *Aggregator {
	return &Aggregator{
		port:   port,
		window: window,
		now:    time.Now,
	}
}

// WithClock overrides the wall clock
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Window returns the premarket window in use
func (a *Aggregator) Window() Window {
	return a.window
}

// Compute fetches and computes the premarket row for pos
func (a *Aggregator) Compute(ctx context.Context, pos contracts.Position) contracts.PremarketRow {
	pos = pos.Normalized()
	if !format.ValidDenominator(pos.EntryPrice) {
		return contracts.ErrorRow(pos.Symbol, pos.Quantity, pos.EntryPrice, contracts.InvalidEntryPrice(pos.Symbol))
	}

	now := a.now().In(a.window.Location)

	y, m, d := now.Date()
	tomorrow := time.Date(y, m, d, 0, 0, 0, 0, a.window.Location).AddDate(0, 0, 1)

	daily, err := a.port.FetchDaily(ctx, pos.Symbol, tomorrow.Add(-DailyLookback), tomorrow)
	if err != nil {
		return contracts.ErrorRow(pos.Symbol, pos.Quantity, pos.EntryPrice, err)
	}

	start, end := a.window.Bounds(now)
	intraday, err := a.port.FetchIntraday(ctx, pos.Symbol, start, end, true)
	if err != nil {
		return contracts.ErrorRow(pos.Symbol, pos.Quantity, pos.EntryPrice, err)
	}

	return ComputeRow(pos.Symbol, pos.Quantity, pos.EntryPrice, daily, FilterWindow(intraday, now, a.window))
}
