package registry

import (
	"context"
	"log"
	"time"
)

const (
	DefaultSweepInterval = time.Hour
	DefaultTempFileAge   = 24 * time.Hour
)

// SweepObserver receives the outcome of each sweep pass.
type SweepObserver interface {
	RecordFilesSwept(count int)
}

// StartSweeper launches the recurring orphan sweep. It runs until ctx is
// cancelled. Tests call Sweep directly instead of waiting on the ticker.
func (r *Registry) StartSweeper(ctx context.Context, interval, maxAge time.Duration, obs SweepObserver) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultTempFileAge
	}
	go r.sweepLoop(ctx, interval, maxAge, obs)
}

func (r *Registry) sweepLoop(ctx context.Context, interval, maxAge time.Duration, obs SweepObserver) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := r.Sweep(maxAge)
			if err != nil {
				log.Printf("sweep temp files: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("swept %d stale temp files", removed)
			}
			if obs != nil {
				obs.RecordFilesSwept(removed)
			}
		}
	}
}
