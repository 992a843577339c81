// Package sweeper runs the background cleanup of idle chat sessions and
// stale visitor records.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/campus-assist/internal/config"
	"github.com/ashureev/campus-assist/internal/shared"
)

// SessionSweeper discards idle chat sessions.
type SessionSweeper interface {
	SweepIdle(ttl time.Duration) int
}

// VisitorPruner deletes visitors that have not been seen for ttl.
type VisitorPruner interface {
	DeleteInactiveVisitors(ctx context.Context, ttl time.Duration) (int64, error)
}

// Result reports what one sweep removed.
type Result struct {
	Sessions int
	Visitors int64
}

// Start runs a background goroutine that sweeps every cfg.Interval until ctx
// is done.
func Start(ctx context.Context, cfg config.SweepConfig, sessions SessionSweeper, repo VisitorPruner) {
	ticker := time.NewTicker(cfg.Interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Sweeper started",
			"interval", cfg.Interval,
			"session_idle_ttl", cfg.SessionIdleTTL,
			"visitor_ttl", cfg.VisitorTTL)

		for {
			select {
			case <-ticker.C:
				RunOnce(ctx, cfg, sessions, repo)
			case <-ctx.Done():
				slog.Info("Sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// RunOnce performs a single sweep.
func RunOnce(ctx context.Context, cfg config.SweepConfig, sessions SessionSweeper, repo VisitorPruner) Result {
	var res Result

	if sessions != nil {
		res.Sessions = sessions.SweepIdle(cfg.SessionIdleTTL)
		if res.Sessions > 0 {
			slog.Info("Sweeper discarded idle chat sessions", "count", res.Sessions)
		}
	}

	if repo == nil {
		return res
	}

	err := shared.RetryOnConflict(ctx, "delete inactive visitors", shared.DefaultRetryAttempts, shared.DefaultRetryBaseDelay, func() error {
		n, err := repo.DeleteInactiveVisitors(ctx, cfg.VisitorTTL)
		if err != nil {
			return err
		}
		res.Visitors = n
		return nil
	})
	switch {
	case err != nil && ctx.Err() != nil:
		slog.Debug("Sweeper canceled during visitor cleanup", "error", err)
	case err != nil:
		slog.Error("Sweeper failed to delete inactive visitors", "error", err)
	case res.Visitors > 0:
		slog.Info("Sweeper deleted inactive visitors", "count", res.Visitors)
	}

	return res
}
