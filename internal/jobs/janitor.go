package jobs

import (
	"context"
	"time"

	"server/internal/infra"
)

// Janitor periodically evicts expired terminal job records. Without it the
// store grows for the life of the process, since jobs are never explicitly
// destroyed by callers.
type Janitor struct {
	store    *Store
	logger   infra.Logger
	ttl      time.Duration
	interval time.Duration
}

func NewJanitor(store *Store, logger infra.Logger, ttl, interval time.Duration) *Janitor {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Janitor{store: store, logger: logger, ttl: ttl, interval: interval}
}

// Run sweeps until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := j.store.Sweep(j.ttl, time.Now().UTC()); removed > 0 {
				j.logger.Info().
					Int("removed", removed).
					Int("remaining", j.store.Len()).
					Msg("janitor: evicted expired jobs")
			}
		}
	}
}
