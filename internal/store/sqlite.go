package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ashureev/campus-assist/internal/domain"
	"github.com/ashureev/campus-assist/internal/shared"
)

// MemoryPath selects a process-local database that vanishes on exit.
const MemoryPath = ":memory:"

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	hitMu sync.Mutex // Serializes counter upserts to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository. dbPath may be MemoryPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	memory := dbPath == "" || dbPath == MemoryPath

	var dsn string
	if memory {
		dsn = MemoryPath + "?_pragma=busy_timeout(5000)"
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		// WAL mode for better concurrency.
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if memory {
		// Every connection to :memory: is a separate database; pin one.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS visitors (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		last_seen_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_visitors_last_seen ON visitors(last_seen_at);

	CREATE TABLE IF NOT EXISTS intent_hits (
		intent TEXT NOT NULL,
		outcome TEXT NOT NULL,
		hits INTEGER NOT NULL DEFAULT 0,
		last_seen_at INTEGER NOT NULL,
		PRIMARY KEY (intent, outcome)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetVisitor retrieves a visitor by their user ID.
func (s *SQLiteStore) GetVisitor(ctx context.Context, userID string) (*domain.Visitor, error) {
	query := `
		SELECT user_id, username, role, last_seen_at, created_at, updated_at
		FROM visitors WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var v domain.Visitor
	var role string
	var lastSeen, createdAt, updatedAt int64

	err := row.Scan(&v.UserID, &v.Username, &role, &lastSeen, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan visitor row: %w", err)
	}

	v.Role = domain.Role(role)
	v.LastSeenAt = time.Unix(lastSeen, 0)
	v.CreatedAt = time.Unix(createdAt, 0)
	v.UpdatedAt = time.Unix(updatedAt, 0)

	return &v, nil
}

// UpsertVisitor creates or updates a visitor record.
func (s *SQLiteStore) UpsertVisitor(ctx context.Context, v *domain.Visitor) error {
	query := `
	INSERT INTO visitors (user_id, username, role, last_seen_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		username = excluded.username,
		role = CASE WHEN excluded.role <> '' THEN excluded.role ELSE visitors.role END,
		last_seen_at = excluded.last_seen_at,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		v.UserID, v.Username, string(v.Role),
		v.LastSeenAt.Unix(), v.CreatedAt.Unix(), v.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert visitor: %w", err)
	}
	return nil
}

// UpdateRole stores the role for a visitor.
func (s *SQLiteStore) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	query := `UPDATE visitors SET role = ?, updated_at = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, string(role), time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrVisitorNotFound
	}
	return nil
}

// UpdateLastSeen updates the last_seen_at timestamp for a visitor.
func (s *SQLiteStore) UpdateLastSeen(ctx context.Context, userID string, lastSeen time.Time) error {
	query := `UPDATE visitors SET last_seen_at = ?, updated_at = ? WHERE user_id = ?`
	result, err := s.db.ExecContext(ctx, query, lastSeen.Unix(), time.Now().Unix(), userID)
	if err != nil {
		return fmt.Errorf("update last_seen: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateLastSeen affected 0 rows", "user_id", userID)
	}

	return nil
}

// DeleteInactiveVisitors removes visitors whose last activity is older than ttl.
func (s *SQLiteStore) DeleteInactiveVisitors(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE last_seen_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("delete inactive visitors: %w", err)
	}
	return result.RowsAffected()
}

// RecordIntentHit increments the (intent, outcome) counter.
func (s *SQLiteStore) RecordIntentHit(ctx context.Context, intent string, outcome domain.IntentOutcome, at time.Time) error {
	s.hitMu.Lock()
	defer s.hitMu.Unlock()

	query := `
	INSERT INTO intent_hits (intent, outcome, hits, last_seen_at)
	VALUES (?, ?, 1, ?)
	ON CONFLICT(intent, outcome) DO UPDATE SET
		hits = intent_hits.hits + 1,
		last_seen_at = MAX(intent_hits.last_seen_at, excluded.last_seen_at)`

	// Another process may share a file database; the mutex only covers this one.
	return shared.RetryOnConflict(ctx, "record intent hit", shared.DefaultRetryAttempts, shared.DefaultRetryBaseDelay, func() error {
		if _, err := s.db.ExecContext(ctx, query, intent, string(outcome), at.Unix()); err != nil {
			return fmt.Errorf("record intent hit: %w", err)
		}
		return nil
	})
}

// IntentStats returns every counter ordered by hits, then intent name.
func (s *SQLiteStore) IntentStats(ctx context.Context) ([]domain.IntentStat, error) {
	query := `
		SELECT intent, outcome, hits, last_seen_at
		FROM intent_hits ORDER BY hits DESC, intent ASC, outcome ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query intent stats: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close intent stats rows", "error", closeErr)
		}
	}()

	var stats []domain.IntentStat
	for rows.Next() {
		var st domain.IntentStat
		var outcome string
		var lastSeen int64
		if err := rows.Scan(&st.Intent, &outcome, &st.Hits, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan intent stat row: %w", err)
		}
		st.Outcome = domain.IntentOutcome(outcome)
		st.LastSeenAt = time.Unix(lastSeen, 0)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intent stats: %w", err)
	}

	return stats, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteStore)(nil)
