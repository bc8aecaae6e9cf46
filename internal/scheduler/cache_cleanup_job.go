package scheduler

import (
	"github.com/rs/zerolog"

	"folioplan/internal/cache"
)

// CacheCleanupJob deletes expired rows from all cache tables.
type CacheCleanupJob struct {
	cache *cache.Repository
	log   zerolog.Logger
}

// NewCacheCleanupJob creates the hourly cache cleanup job.
func NewCacheCleanupJob(cacheRepo *cache.Repository, log zerolog.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache: cacheRepo,
		log:   log.With().Str("job", "cache_cleanup").Logger(),
	}
}

func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

func (j *CacheCleanupJob) Run() error {
	results, err := j.cache.DeleteAllExpired()
	if err != nil {
		return err
	}

	total := int64(0)
	for _, n := range results {
		total += n
	}
	if total > 0 {
		j.log.Info().Int64("deleted", total).Msg("Removed expired cache entries")
	}

	return nil
}
