package sweep

import (
	"context"
	"time"

	"github.com/colonyops/taproom/internal/core/logging"
)

// Sweeper removes expired entries and reports how many it removed.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Start periodically sweeps expired cache entries. It blocks until the
// context is cancelled.
func Start(ctx context.Context, s Sweeper, interval time.Duration) {
	if interval <= 0 {
		return
	}

	logger := logging.Cmp("sweep")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				logger.Debug().Err(err).Msg("kv sweep failed")
				continue
			}
			if n > 0 {
				logger.Debug().Int("removed", n).Msg("swept expired entries")
			}
		}
	}
}
