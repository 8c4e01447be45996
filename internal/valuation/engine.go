// Package valuation derives point-in-time P/L for a single position from a
// short daily bar window.
package valuation

import (
	"time"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/format"
)

// DailyWindow returns the [start, end) range whose daily bars hold yesterday
// and today: two calendar days back through tomorrow.
func DailyWindow(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -2), today.AddDate(0, 0, 1)
}

// ComputePositionStats values pos against the latest close in daily.
//
// The last bar is today and the one before it is yesterday; callers must
// request DailyWindow so those offsets mean what they say. With fewer than
// two bars Yesterday and Today are left zero-valued.
func ComputePositionStats(pos contracts.Position, daily contracts.Series) (*contracts.PositionStats, error) {
	symbol := contracts.NormalizeSymbol(pos.Symbol)

	latest, ok := daily.Latest()
	if !ok {
		return nil, contracts.DataUnavailable(symbol)
	}

	totalPLPct, ok := format.PctChange(pos.EntryPrice, latest.Close)
	if !ok {
		return nil, contracts.InvalidEntryPrice(symbol)
	}

	totalCost := pos.Quantity * pos.EntryPrice
	currentValue := pos.Quantity * latest.Close

	stats := &contracts.PositionStats{
		Symbol:       symbol,
		Quantity:     pos.Quantity,
		EntryPrice:   pos.EntryPrice,
		CurrentPrice: latest.Close,
		TotalCost:    totalCost,
		CurrentValue: currentValue,
		TotalPL:      currentValue - totalCost,
		TotalPLPct:   totalPLPct,
	}

	if yesterday, ok := daily.Previous(); ok {
		stats.Yesterday = contracts.DayStats{
			Open:   yesterday.Open,
			Close:  yesterday.Close,
			High:   yesterday.High,
			Low:    yesterday.Low,
			Volume: yesterday.Volume,
		}
		stats.Today = contracts.TodayStats{
			Open:   latest.Open,
			High:   latest.High,
			Low:    latest.Low,
			Volume: latest.Volume,
		}
	}

	return stats, nil
}
