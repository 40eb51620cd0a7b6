package database

import (
	"context"
	"time"
)

// PurgeJobsOlderThan deletes job rows created before now minus retention.
func (db *DB) PurgeJobsOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM jobs WHERE created_at < now() - make_interval(secs => $1)`,
		retention.Seconds(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RunRetention purges expired jobs once at start and then every interval
// until ctx is cancelled. A non-positive retention disables purging.
func (db *DB) RunRetention(ctx context.Context, retention, interval time.Duration) {
	if retention <= 0 {
		return
	}
	interval = retentionInterval(interval)

	purge := func() {
		n, err := db.PurgeJobsOlderThan(ctx, retention)
		if err != nil {
			if ctx.Err() == nil {
				db.log.Warn().Err(err).Msg("job retention purge failed")
			}
			return
		}
		if n > 0 {
			db.log.Info().Int64("deleted", n).Dur("retention", retention).Msg("purged expired jobs")
		}
	}

	purge()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}

// retentionInterval defaults a non-positive purge interval to one hour.
func retentionInterval(interval time.Duration) time.Duration {
	if interval <= 0 {
		return time.Hour
	}
	return interval
}
