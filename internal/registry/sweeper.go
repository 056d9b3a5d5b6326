package registry

import (
	"context"
	"time"
)

const DefaultSweepInterval = 24 * time.Hour

// RunSweeper calls Sweep every interval until ctx is done. onSweep, if set,
// receives the number of entries removed by each run.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := r.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		case <-ctx.Done():
			return
		}
	}
}
