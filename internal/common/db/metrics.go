package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/rhythmix/backend/internal/common/constants"
	"github.com/AlibekovAA/rhythmix/backend/internal/observability/metrics"
)

// StartPoolMetrics samples pool statistics until ctx is done.
func StartPoolMetrics(ctx context.Context, pool *pgxpool.Pool, interval time.Duration) {
	if interval <= 0 {
		interval = constants.DBPoolMetricsInterval
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := pool.Stat()
				metrics.UserStorePoolConnections.WithLabelValues("acquired").Set(float64(stats.AcquiredConns()))
				metrics.UserStorePoolConnections.WithLabelValues("idle").Set(float64(stats.IdleConns()))
				metrics.UserStorePoolConnections.WithLabelValues("total").Set(float64(stats.TotalConns()))
				metrics.UserStorePoolConnections.WithLabelValues("max").Set(float64(stats.MaxConns()))
			}
		}
	}()
}
