package session

import (
	"context"
	"time"
)

// Run feeds Tick events to c every interval until the session terminates
// or ctx is cancelled. Call it in its own goroutine.
func Run(ctx context.Context, c *Controller, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.Done():
			return
		case <-ticker.C:
			if _, err := c.Tick(ctx); err != nil {
				c.log.Error().Err(err).Msg("Tick failed")
			}
		}
	}
}
