package shared

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsSQLiteConflictError(t *testing.T) {
	require.False(t, IsSQLiteConflictError(nil))
	require.True(t, IsSQLiteConflictError(errors.New("exec: SQLITE_BUSY")))
	require.True(t, IsSQLiteConflictError(errors.New("database is locked (5)")))
	require.False(t, IsSQLiteConflictError(errors.New("no such table: visitors")))
}

func TestIsSQLiteConflictError_DriverError(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec("SELECT * FROM missing")
	require.Error(t, err)
	require.False(t, IsSQLiteConflictError(fmt.Errorf("query: %w", err)))
}

func TestRetryOnConflict_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), "op", 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryOnConflict_StopsOnOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := RetryOnConflict(context.Background(), "op", 5, time.Millisecond, func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestRetryOnConflict_GivesUp(t *testing.T) {
	calls := 0
	err := RetryOnConflict(context.Background(), "sweep", 2, time.Millisecond, func() error {
		calls++
		return errors.New("SQLITE_BUSY")
	})
	require.ErrorContains(t, err, "sweep after 2 attempts")
	require.Equal(t, 2, calls)
}

func TestRetryOnConflict_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryOnConflict(ctx, "op", 3, time.Hour, func() error {
		return errors.New("SQLITE_BUSY")
	})
	require.ErrorIs(t, err, context.Canceled)
}
