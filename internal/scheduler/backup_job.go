package scheduler

import (
	"context"
	"time"

	"folioplan/internal/reliability"
)

// backupTimeout bounds one full backup run including the upload.
const backupTimeout = 10 * time.Minute

// BackupJob archives the databases and uploads them to object storage.
type BackupJob struct {
	backups *reliability.BackupService
}

// NewBackupJob creates the daily backup job.
func NewBackupJob(backups *reliability.BackupService) *BackupJob {
	return &BackupJob{backups: backups}
}

func (j *BackupJob) Name() string {
	return "database_backup"
}

func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	return j.backups.Run(ctx)
}
