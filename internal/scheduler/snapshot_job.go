package scheduler

import (
	"folioplan/internal/modules/history"
)

// SnapshotJob records a daily value snapshot for every portfolio.
type SnapshotJob struct {
	history *history.Service
}

// NewSnapshotJob creates the daily snapshot job.
func NewSnapshotJob(history *history.Service) *SnapshotJob {
	return &SnapshotJob{history: history}
}

func (j *SnapshotJob) Name() string {
	return "portfolio_snapshots"
}

func (j *SnapshotJob) Run() error {
	return j.history.SnapshotAll()
}
