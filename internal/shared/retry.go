package shared

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Retry defaults for SQLite conflicts: 100ms, 200ms, 400ms.
const (
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = 100 * time.Millisecond
)

// RetryOnConflict calls fn until it succeeds, returns a non-conflict error,
// or attempts are exhausted. Conflict errors back off exponentially from
// baseDelay. A canceled ctx stops the loop early.
func RetryOnConflict(ctx context.Context, op string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsSQLiteConflictError(err) || i == attempts-1 {
			break
		}

		delay := baseDelay * time.Duration(1<<i)
		slog.Debug("SQLite conflict, retrying", "op", op, "attempt", i+1, "delay", delay)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-t.C:
		}
	}
	return fmt.Errorf("%s after %d attempts: %w", op, attempts, err)
}
