package job

import (
	"context"
	"database/sql"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// StatsSource is satisfied by *repo.DB.
type StatsSource interface {
	Stats() sql.DBStats
}

// DBStatsJob logs connection pool usage so that saturation shows up before
// requests start failing with 503.
type DBStatsJob struct {
	db StatsSource
}

func NewDBStatsJob(db StatsSource) *DBStatsJob {
	return &DBStatsJob{db: db}
}

func (j *DBStatsJob) Name() string {
	return "db_stats"
}

func (j *DBStatsJob) Run(ctx context.Context) error {
	stats := j.db.Stats()
	fields := []zap.Field{
		zap.Int("max_open", stats.MaxOpenConnections),
		zap.Int("open", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
		zap.Int64("max_lifetime_closed", stats.MaxLifetimeClosed),
	}
	log := logutil.GetLogger(ctx)
	if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
		log.Warn("db pool saturated", fields...)
		return nil
	}
	log.Info("db pool stats", fields...)
	return nil
}
