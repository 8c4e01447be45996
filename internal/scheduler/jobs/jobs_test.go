package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/premarket"
	"github.com/wonny/stocktracker/internal/scheduler"
	"github.com/wonny/stocktracker/pkg/logger"
)

type stubSource struct {
	rows  []contracts.PremarketRow
	err   error
	calls int
}

func (s *stubSource) Premarket(ctx context.Context) ([]contracts.PremarketRow, error) {
	s.calls++
	return s.rows, s.err
}

func TestPremarketSnapshotJob_Run(t *testing.T) {
	window := premarket.DefaultWindow()
	inside := time.Date(2024, 3, 15, 8, 0, 0, 0, window.Location)
	after := time.Date(2024, 3, 15, 9, 45, 0, 0, window.Location)

	source := &stubSource{rows: []contracts.PremarketRow{
		contracts.SuccessRow("AAPL", 1, 1, contracts.PremarketMetrics{CurrentPrice: 2}),
		contracts.ErrorRow("BAD", 1, 1, errors.New("boom")),
	}}
	snapshots := scheduler.NewSnapshotStore(time.Hour, nil, logger.NewNop())
	job := NewPremarketSnapshotJob(source, snapshots, window, "", logger.NewNop())
	ctx := context.Background()

	assert.Equal(t, "premarket_snapshot", job.Name())
	assert.Equal(t, DefaultPremarketSchedule, job.Schedule())

	job.WithClock(func() time.Time { return after })
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 0, source.calls)
	_, ok := snapshots.Latest(ctx)
	assert.False(t, ok)

	job.WithClock(func() time.Time { return inside })
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 1, source.calls)

	snap, ok := snapshots.Latest(ctx)
	require.True(t, ok)
	assert.Equal(t, inside, snap.TakenAt)
	assert.Equal(t, 2, snap.Summary.Total)
	assert.Equal(t, 1, snap.Summary.Error)
}

func TestPremarketSnapshotJob_SourceFailure(t *testing.T) {
	window := premarket.DefaultWindow()
	source := &stubSource{err: errors.New("db down")}
	snapshots := scheduler.NewSnapshotStore(time.Hour, nil, logger.NewNop())
	job := NewPremarketSnapshotJob(source, snapshots, window, "0 * * * * *", logger.NewNop()).
		WithClock(func() time.Time { return time.Date(2024, 3, 15, 5, 0, 0, 0, window.Location) })

	assert.Equal(t, "0 * * * * *", job.Schedule())
	assert.ErrorContains(t, job.Run(context.Background()), "db down")
}

func TestSnapshotCleanupJob(t *testing.T) {
	snapshots := scheduler.NewSnapshotStore(time.Minute, nil, logger.NewNop())
	job := NewSnapshotCleanupJob(snapshots, logger.NewNop())
	ctx := context.Background()

	snapshots.Publish(ctx, scheduler.Snapshot{TakenAt: time.Now().Add(-time.Hour)})
	require.NoError(t, job.Run(ctx))

	_, ok := snapshots.Latest(ctx)
	assert.False(t, ok)
}
