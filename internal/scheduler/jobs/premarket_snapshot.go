package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/stocktracker/internal/batch"
	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/premarket"
	"github.com/wonny/stocktracker/internal/scheduler"
	"github.com/wonny/stocktracker/pkg/logger"
)

// DefaultPremarketSchedule fires every five minutes through the premarket hours
const DefaultPremarketSchedule = "0 */5 4-9 * * MON-FRI"

// PremarketSnapshotJobName is the registered name of PremarketSnapshotJob
const PremarketSnapshotJobName = "premarket_snapshot"

// PremarketSource produces the premarket rows for every stored position
type PremarketSource interface {
	Premarket(ctx context.Context) ([]contracts.PremarketRow, error)
}

// PremarketSnapshotJob computes the premarket batch and publishes it
type PremarketSnapshotJob struct {
	source    PremarketSource
	snapshots *scheduler.SnapshotStore
	window    premarket.Window
	schedule  string
	now       func() time.Time
	logger    *logger.Logger
}

// NewPremarketSnapshotJob creates a new premarket snapshot job
func NewPremarketSnapshotJob(
	source PremarketSource,
	snapshots *scheduler.SnapshotStore,
	window premarket.Window,
	schedule string,
	log *logger.Logger,
) *PremarketSnapshotJob {
	if schedule == "" {
		schedule = DefaultPremarketSchedule
	}
	return &PremarketSnapshotJob{
		source:    source,
		snapshots: snapshots,
		window:    window,
		schedule:  schedule,
		now:       time.Now,
		logger:    log.WithField("job", PremarketSnapshotJobName),
	}
}

// WithClock overrides the wall clock
func (j *PremarketSnapshotJob) WithClock(now func() time.Time) *PremarketSnapshotJob {
	j.now = now
	return j
}

// Name returns the job name
func (j *PremarketSnapshotJob) Name() string {
	return PremarketSnapshotJobName
}

// Schedule returns the cron schedule
func (j *PremarketSnapshotJob) Schedule() string {
	return j.schedule
}

// Run computes one snapshot. Ticks outside the premarket window are skipped.
func (j *PremarketSnapshotJob) Run(ctx context.Context) error {
	now := j.now()
	if !j.window.Contains(now) {
		j.logger.WithField("at", now.In(j.window.Location).Format("15:04")).Debug("Outside premarket window, skipping")
		return nil
	}

	rows, err := j.source.Premarket(ctx)
	if err != nil {
		return fmt.Errorf("compute premarket: %w", err)
	}

	summary := batch.Summarize(rows)
	j.snapshots.Publish(ctx, scheduler.Snapshot{
		TakenAt: now,
		Rows:    rows,
		Summary: summary,
	})

	j.logger.WithFields(map[string]interface{}{
		"total":   summary.Total,
		"success": summary.Success,
		"no_data": summary.NoData,
		"failed":  summary.Error,
	}).Info("Premarket snapshot published")

	return nil
}
