// internal/capture/runner.go
package capture

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// readErrorBackoff throttles a failing UART so it cannot spin the loop.
const readErrorBackoff = time.Second

// Run polls the scanner until ctx is done.
// One goroutine per device. Ingest and flush on every tick. No retries.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	e.log.Info("capture running",
		zap.Duration("silence", e.cfg.Silence),
		zap.Duration("interval", e.cfg.Interval),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if _, err := e.Ingest(); err != nil {
			e.log.Warn("scanner read failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(readErrorBackoff):
			}
		}

		e.MaybeFlush()
	}
}
