package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/pao-metrics/internal/observability"
)

// ShellPool is the part of the shell registry the janitor drives.
type ShellPool interface {
	EvictIdle(ttl time.Duration) int
	Len() int
}

// Janitor closes shells of clients that went quiet and publishes the
// resident shell count.
type Janitor struct {
	pool     ShellPool
	metrics  *observability.Metrics
	logger   *zap.Logger
	interval time.Duration
	idleTTL  time.Duration
}

func NewJanitor(pool ShellPool, metrics *observability.Metrics, logger *zap.Logger, interval, idleTTL time.Duration) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{pool: pool, metrics: metrics, logger: logger, interval: interval, idleTTL: idleTTL}
}

// Run sweeps every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep performs one eviction pass.
func (j *Janitor) Sweep() int {
	evicted := j.pool.EvictIdle(j.idleTTL)
	if evicted > 0 {
		j.logger.Info("evicted idle shells", zap.Int("count", evicted))
	}
	j.metrics.SetShells(j.pool.Len())
	return evicted
}
