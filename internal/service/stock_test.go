package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocktracker/internal/batch"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/marketdata/marketdatatest"
	"github.com/wonny/stocktracker/internal/premarket"
	"github.com/wonny/stocktracker/internal/store"
	"github.com/wonny/stocktracker/pkg/logger"
)

var (
	window = premarket.DefaultWindow()
	now    = time.Date(2024, 3, 15, 8, 0, 0, 0, window.Location)
	today  = time.Date(2024, 3, 15, 0, 0, 0, 0, window.Location)
)

func newService(port *marketdatatest.Port, positions ...contracts.Position) *StockService {
	log := logger.NewNop()
	agg := premarket.NewAggregator(port, window).WithClock(func() time.Time { return now })
	runner := batch.NewRunner(agg, batch.DefaultConfig(), log)
	return NewStockService(store.NewMemoryStore(positions...), port, runner, window.Location, log).
		WithClock(func() time.Time { return now })
}

func TestPositionStats(t *testing.T) {
	port := marketdatatest.New().Set("AAPL", marketdatatest.Symbol{
		Daily: []contracts.Bar{
			{Timestamp: today.AddDate(0, 0, -1), Open: 148, High: 152, Low: 147, Close: 150, Volume: 1000},
			{Timestamp: today, Open: 151, High: 156, Low: 150, Close: 155, Volume: 2000},
		},
	})
	svc := newService(port, contracts.Position{Symbol: "AAPL", Quantity: 10, EntryPrice: 140})

	stats, err := svc.PositionStats(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, 155.0, stats.CurrentPrice)
	assert.InDelta(t, 1400.0, stats.TotalCost, 1e-9)
	assert.InDelta(t, 1550.0, stats.CurrentValue, 1e-9)
	assert.InDelta(t, 150.0, stats.TotalPL, 1e-9)
	assert.Equal(t, 150.0, stats.Yesterday.Close)
	assert.Equal(t, 151.0, stats.Today.Open)
}

func TestPositionStats_Errors(t *testing.T) {
	port := marketdatatest.New().
		Set("EMPTY", marketdatatest.Symbol{}).
		Set("DOWN", marketdatatest.Symbol{DailyErr: errors.New("connection reset")})

	svc := newService(port,
		contracts.Position{Symbol: "EMPTY", Quantity: 1, EntryPrice: 1},
		contracts.Position{Symbol: "DOWN", Quantity: 1, EntryPrice: 1},
		contracts.Position{Symbol: "GONE", Quantity: 1, EntryPrice: 1},
	)
	ctx := context.Background()

	_, err := svc.PositionStats(ctx, "MISSING")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	_, err = svc.PositionStats(ctx, "EMPTY")
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
	assert.EqualError(t, err, "no market data available for EMPTY")

	_, err = svc.PositionStats(ctx, "DOWN")
	assert.ErrorIs(t, err, contracts.ErrExternalService)

	_, err = svc.PositionStats(ctx, "GONE")
	assert.ErrorIs(t, err, contracts.ErrSymbolNotFound)
}

func TestCreatePosition(t *testing.T) {
	port := marketdatatest.New().Set("AAPL", marketdatatest.Symbol{})
	svc := newService(port)
	ctx := context.Background()

	created, err := svc.CreatePosition(ctx, contracts.Position{Symbol: "aapl", Quantity: 5, EntryPrice: 100}, true)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", created.Symbol)

	tests := []struct {
		name     string
		pos      contracts.Position
		validate bool
	}{
		{"duplicate", contracts.Position{Symbol: "AAPL", Quantity: 1, EntryPrice: 1}, false},
		{"empty symbol", contracts.Position{Symbol: "  ", Quantity: 1, EntryPrice: 1}, false},
		{"zero entry price", contracts.Position{Symbol: "MSFT", Quantity: 1, EntryPrice: 0}, false},
		{"negative entry price", contracts.Position{Symbol: "MSFT", Quantity: 1, EntryPrice: -3}, false},
		{"unknown symbol", contracts.Position{Symbol: "ZZZZ", Quantity: 1, EntryPrice: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePosition(ctx, tt.pos, tt.validate)
			assert.ErrorIs(t, err, contracts.ErrValidation)
		})
	}

	short, err := svc.CreatePosition(ctx, contracts.Position{Symbol: "TSLA", Quantity: -3, EntryPrice: 200}, false)
	require.NoError(t, err)
	assert.Equal(t, -3.0, short.Quantity)
}

func TestDeleteAndClear(t *testing.T) {
	svc := newService(marketdatatest.New(),
		contracts.Position{Symbol: "AAPL", Quantity: 1, EntryPrice: 1},
		contracts.Position{Symbol: "MSFT", Quantity: 1, EntryPrice: 1},
	)
	ctx := context.Background()

	require.NoError(t, svc.DeletePosition(ctx, "aapl"))
	assert.ErrorIs(t, svc.DeletePosition(ctx, "AAPL"), contracts.ErrNotFound)

	require.NoError(t, svc.ClearPositions(ctx))
	all, err := svc.ListPositions(ctx, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPremarket_CoversEveryPosition(t *testing.T) {
	port := marketdatatest.New()
	var positions []contracts.Position
	for i := 0; i < 120; i++ {
		sym := fmt.Sprintf("T%03d", i)
		port.Set(sym, marketdatatest.Symbol{
			Daily:    marketdatatest.DailyBars(today, 10, 11),
			Intraday: marketdatatest.MinuteBars(today.Add(5*time.Hour), 12),
		})
		positions = append(positions, contracts.Position{Symbol: sym, Quantity: 1, EntryPrice: 10})
	}
	svc := newService(port, positions...)

	rows, err := svc.Premarket(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 120)
	assert.Equal(t, "T000", rows[0].Symbol)
	assert.Equal(t, "T119", rows[119].Symbol)
	assert.Equal(t, batch.Summary{Total: 120, Success: 120}, batch.Summarize(rows))
}
