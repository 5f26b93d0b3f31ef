package job

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

type fixedStats sql.DBStats

func (f fixedStats) Stats() sql.DBStats { return sql.DBStats(f) }

func TestDBStatsJob(t *testing.T) {
	j := NewDBStatsJob(fixedStats{MaxOpenConnections: 2, InUse: 2, OpenConnections: 2})
	require.Equal(t, "db_stats", j.Name())
	require.NoError(t, j.Run(context.Background()))

	j = NewDBStatsJob(fixedStats{})
	require.NoError(t, j.Run(context.Background()))
}
