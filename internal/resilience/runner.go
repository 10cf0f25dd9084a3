// internal/resilience/runner.go
package resilience

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run drives Step on a fixed yield until ctx is done.
// Every network call inside Step is bounded by its own timeout; the
// watchdog covers anything that still blocks.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.LoopEvery)
	defer ticker.Stop()

	c.log.Info("resilience controller running",
		zap.Duration("supervise", c.cfg.SuperviseEvery),
		zap.Duration("heartbeat", c.cfg.HeartbeatEvery),
		zap.Duration("inactivity", c.cfg.Inactivity),
		zap.Int("failure_threshold", c.cfg.FailureThreshold),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Step(ctx)
		}
	}
}
