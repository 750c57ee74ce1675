// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"garden_bot/internal/model"
)

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("not found")

// Snapshots persists the last published state per snapshot kind.
type Snapshots interface {
	LoadSnapshot(ctx context.Context, kind model.SnapshotKind) ([]byte, error)
	SaveSnapshot(ctx context.Context, kind model.SnapshotKind, payload []byte) error
}

// Notifications persists the last notification issued per dedup key.
type Notifications interface {
	NotificationRef(ctx context.Context, key string) (model.NotificationRef, error)
	SetNotificationRef(ctx context.Context, key string, ref model.NotificationRef) error
}

// Storage is the interface for all persistence operations.
type Storage interface {
	Snapshots
	Notifications
	Close() error
}

// Load decodes the snapshot stored under kind.
// It returns def when nothing is stored yet. A failed read or a corrupt payload
// also yields def, together with an error describing what was discarded.
func Load[T any](ctx context.Context, s Snapshots, kind model.SnapshotKind, def T) (T, error) {
	payload, err := s.LoadSnapshot(ctx, kind)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("load %s snapshot: %w", kind, err)
	}
	if len(payload) == 0 {
		return def, fmt.Errorf("load %s snapshot: empty payload", kind)
	}

	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return def, fmt.Errorf("decode %s snapshot: %w", kind, err)
	}
	return v, nil
}

// Save replaces the snapshot stored under kind with v.
func Save[T any](ctx context.Context, s Snapshots, kind model.SnapshotKind, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", kind, err)
	}
	if err := s.SaveSnapshot(ctx, kind, payload); err != nil {
		return fmt.Errorf("save %s snapshot: %w", kind, err)
	}
	return nil
}
