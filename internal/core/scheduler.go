package core

// scheduler.go runs background maintenance for the session registry.
//
// Idle sessions hold a full copy of the table, so they are swept
// periodically. The sweeper is long-running and context-aware for graceful
// shutdown.

import (
	"context"
	"log/slog"
	"time"
)

// SweepConfig holds configuration for the session sweeper.
// Zero values fall back to defaults.
type SweepConfig struct {
	TTL      time.Duration // Idle time before a session is dropped (default: 30m)
	Interval time.Duration // How often to sweep (default: 1m)
}

const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

func (c SweepConfig) withDefaults() SweepConfig {
	if c.TTL <= 0 {
		c.TTL = DefaultSessionTTL
	}
	if c.Interval <= 0 {
		c.Interval = DefaultSweepInterval
	}
	return c
}

// StartSweeper removes idle sessions every Interval until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (r *Registry) StartSweeper(ctx context.Context, cfg SweepConfig) {
	cfg = cfg.withDefaults()
	slog.Info("session sweeper started", "ttl", cfg.TTL, "interval", cfg.Interval)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			r.runSweep(cfg)
		}
	}
}

// runSweep performs one sweep cycle.
func (r *Registry) runSweep(cfg SweepConfig) {
	removed := r.Sweep(r.svc.now(), cfg.TTL)
	if removed > 0 {
		slog.Info("swept idle sessions", "removed", removed, "remaining", r.Len())
		return
	}
	slog.Debug("sweep found no idle sessions", "sessions", r.Len())
}
