package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"garden_bot/internal/model"
	"garden_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases consistent and serializes writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadSnapshot returns the raw payload stored for kind.
func (s *SQLite) LoadSnapshot(ctx context.Context, kind model.SnapshotKind) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM snapshots WHERE kind = ?`, string(kind),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	return []byte(payload), nil
}

// SaveSnapshot overwrites the payload stored for kind.
func (s *SQLite) SaveSnapshot(ctx context.Context, kind model.SnapshotKind, payload []byte) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (kind, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(kind), string(payload), now,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// NotificationRef returns the notification last issued under key.
func (s *SQLite) NotificationRef(ctx context.Context, key string) (model.NotificationRef, error) {
	var ref model.NotificationRef
	err := s.db.QueryRowContext(ctx,
		`SELECT chat_id, message_id FROM notifications WHERE key = ?`, key,
	).Scan(&ref.ChatID, &ref.MessageID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotificationRef{}, ErrNotFound
	}
	if err != nil {
		return model.NotificationRef{}, fmt.Errorf("query notification: %w", err)
	}
	return ref, nil
}

// SetNotificationRef records ref as the notification for key.
func (s *SQLite) SetNotificationRef(ctx context.Context, key string, ref model.NotificationRef) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (key, chat_id, message_id, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET chat_id = excluded.chat_id, message_id = excluded.message_id,
		 updated_at = excluded.updated_at`,
		key, ref.ChatID, ref.MessageID, now,
	)
	if err != nil {
		return fmt.Errorf("upsert notification: %w", err)
	}
	return nil
}
