// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/campus-assist/internal/domain"
)

// ErrVisitorNotFound is returned when an update targets an unknown visitor.
var ErrVisitorNotFound = errors.New("visitor not found")

// Repository defines the interface for persisting visitor and intent hit data.
type Repository interface {
	// GetVisitor retrieves a visitor by user ID. Returns nil, nil if absent.
	GetVisitor(ctx context.Context, userID string) (*domain.Visitor, error)

	// UpsertVisitor creates or updates a visitor record. An empty role on
	// the incoming record keeps the stored role.
	UpsertVisitor(ctx context.Context, visitor *domain.Visitor) error

	// UpdateRole stores the role picked in the shell.
	UpdateRole(ctx context.Context, userID string, role domain.Role) error

	// UpdateLastSeen updates the last_seen_at timestamp for a visitor.
	UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error

	// DeleteInactiveVisitors removes visitors not seen within ttl.
	DeleteInactiveVisitors(ctx context.Context, ttl time.Duration) (int64, error)

	// RecordIntentHit increments the counter for one classification outcome.
	RecordIntentHit(ctx context.Context, intent string, outcome domain.IntentOutcome, at time.Time) error

	// IntentStats returns all counters, most hit first.
	IntentStats(ctx context.Context) ([]domain.IntentStat, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
