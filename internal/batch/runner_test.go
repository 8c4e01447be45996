package batch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/marketdata/marketdatatest"
	"github.com/wonny/stocktracker/internal/premarket"
	"github.com/wonny/stocktracker/pkg/logger"
)

var (
	window = premarket.DefaultWindow()
	now    = time.Date(2024, 3, 15, 8, 0, 0, 0, window.Location)
	today  = time.Date(2024, 3, 15, 0, 0, 0, 0, window.Location)
)

func healthy(prev, cur float64) marketdatatest.Symbol {
	return marketdatatest.Symbol{
		Daily:    marketdatatest.DailyBars(today, prev, prev+1),
		Intraday: marketdatatest.MinuteBars(today.Add(6*time.Hour), cur),
	}
}

func newRunner(port *marketdatatest.Port, cfg Config) *Runner {
	agg := premarket.NewAggregator(port, window).WithClock(func() time.Time { return now })
	return NewRunner(agg, cfg, logger.NewNop())
}

func TestRun_SingleFailureIsIsolated(t *testing.T) {
	port := marketdatatest.New()
	var positions []contracts.Position
	for i := 0; i < 10; i++ {
		sym := fmt.Sprintf("S%02d", i)
		positions = append(positions, contracts.Position{Symbol: sym, Quantity: 1, EntryPrice: 50})
		if i == 4 {
			port.Set(sym, marketdatatest.Symbol{
				DailyErr: contracts.NewFetchError("fake", sym, contracts.ErrNetwork, nil),
			})
			continue
		}
		port.Set(sym, healthy(100, 101))
	}

	rows := newRunner(port, DefaultConfig()).Run(context.Background(), positions)

	require.Len(t, rows, 10)
	for i, row := range rows {
		assert.Equal(t, positions[i].Symbol, row.Symbol)
		if i == 4 {
			assert.Equal(t, contracts.OutcomeError, row.Outcome)
			assert.NotEmpty(t, row.Message)
			continue
		}
		assert.Equal(t, contracts.OutcomeSuccess, row.Outcome)
	}

	s := Summarize(rows)
	assert.Equal(t, Summary{Total: 10, Success: 9, Error: 1}, s)
}

func TestRun_PreservesOrderUnderReversedCompletion(t *testing.T) {
	port := marketdatatest.New()
	symbols := []string{"AAA", "BBB", "CCC", "DDD"}
	var positions []contracts.Position
	for i, sym := range symbols {
		s := healthy(100, 100+float64(i))
		s.Delay = time.Duration(len(symbols)-i) * 20 * time.Millisecond
		port.Set(sym, s)
		positions = append(positions, contracts.Position{Symbol: sym, Quantity: 1, EntryPrice: 100})
	}

	rows := newRunner(port, Config{Workers: 4, FetchTimeout: time.Second}).Run(context.Background(), positions)

	require.Len(t, rows, len(symbols))
	for i, sym := range symbols {
		assert.Equal(t, sym, rows[i].Symbol)
		require.Equal(t, contracts.OutcomeSuccess, rows[i].Outcome)
		assert.Equal(t, 100+float64(i), rows[i].CurrentPrice)
	}

	order := port.CompletionOrder()
	require.Len(t, order, len(symbols))
	assert.Equal(t, "DDD", order[0])
}

func TestRun_TimeoutBecomesErrorRow(t *testing.T) {
	slow := healthy(100, 101)
	slow.Delay = time.Second

	port := marketdatatest.New().
		Set("SLOW", slow).
		Set("FAST", healthy(100, 101))

	positions := []contracts.Position{
		{Symbol: "SLOW", Quantity: 1, EntryPrice: 10},
		{Symbol: "FAST", Quantity: 1, EntryPrice: 10},
	}

	rows := newRunner(port, Config{Workers: 2, FetchTimeout: 30 * time.Millisecond}).Run(context.Background(), positions)

	require.Len(t, rows, 2)
	assert.Equal(t, contracts.OutcomeError, rows[0].Outcome)
	assert.Contains(t, rows[0].Message, "deadline exceeded")
	assert.Equal(t, contracts.OutcomeSuccess, rows[1].Outcome)
}

func TestRun_PanicIsRecovered(t *testing.T) {
	port := marketdatatest.New().
		Set("BOOM", marketdatatest.Symbol{Panic: true}).
		Set("OK", healthy(100, 101))

	positions := []contracts.Position{
		{Symbol: "boom", Quantity: 1, EntryPrice: 10},
		{Symbol: "ok", Quantity: 1, EntryPrice: 10},
	}

	rows := newRunner(port, Config{Workers: 1}).Run(context.Background(), positions)

	require.Len(t, rows, 2)
	assert.Equal(t, "BOOM", rows[0].Symbol)
	assert.Equal(t, contracts.OutcomeError, rows[0].Outcome)
	assert.Contains(t, rows[0].Message, "panic")
	assert.Equal(t, contracts.OutcomeSuccess, rows[1].Outcome)
}

func TestRun_CancelledContext(t *testing.T) {
	port := marketdatatest.New().Set("AAA", healthy(100, 101))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := newRunner(port, DefaultConfig()).Run(ctx, []contracts.Position{{Symbol: "AAA", Quantity: 1, EntryPrice: 1}})

	require.Len(t, rows, 1)
	assert.Equal(t, contracts.OutcomeError, rows[0].Outcome)
	assert.Equal(t, 0, port.Calls("AAA"))
}

func TestRun_Empty(t *testing.T) {
	rows := newRunner(marketdatatest.New(), DefaultConfig()).Run(context.Background(), nil)
	assert.Empty(t, rows)
}

func TestSummarize(t *testing.T) {
	rows := []contracts.PremarketRow{
		contracts.SuccessRow("A", 1, 1, contracts.PremarketMetrics{}),
		contracts.NoDataRow("B", 1, 1),
		contracts.ErrorRow("C", 1, 1, nil),
		contracts.NoDataRow("D", 1, 1),
	}

	assert.Equal(t, Summary{Total: 4, Success: 1, NoData: 2, Error: 1}, Summarize(rows))
}
