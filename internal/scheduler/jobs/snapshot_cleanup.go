package jobs

import (
	"context"

	"github.com/wonny/stocktracker/internal/scheduler"
	"github.com/wonny/stocktracker/pkg/logger"
)

// SnapshotCleanupJob drops the in-memory snapshot once it goes stale
type SnapshotCleanupJob struct {
	snapshots *scheduler.SnapshotStore
	logger    *logger.Logger
}

// NewSnapshotCleanupJob creates a new snapshot cleanup job
func NewSnapshotCleanupJob(snapshots *scheduler.SnapshotStore, log *logger.Logger) *SnapshotCleanupJob {
	return &SnapshotCleanupJob{
		snapshots: snapshots,
		logger:    log,
	}
}

// Name returns the job name
func (j *SnapshotCleanupJob) Name() string {
	return "snapshot_cleanup"
}

// Schedule returns the cron schedule (hourly)
func (j *SnapshotCleanupJob) Schedule() string {
	return "0 0 * * * *"
}

// Run executes the cleanup
func (j *SnapshotCleanupJob) Run(ctx context.Context) error {
	if j.snapshots.CleanStale() {
		j.logger.Info("Dropped stale premarket snapshot")
	}
	return nil
}
