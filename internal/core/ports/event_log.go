package ports

import (
	"context"
	"time"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

// EventLogRepository persists log events in the local database.
type EventLogRepository interface {
	// Add writes one event in a single all-or-nothing transaction.
	Add(ctx context.Context, event domain.LogEvent) error

	// Recent returns events at or after since, newest first. Records that
	// cannot be decoded are skipped.
	Recent(ctx context.Context, since time.Time) ([]domain.LogEvent, error)

	// DeleteBefore removes every event strictly older than before and
	// reports how many were removed.
	DeleteBefore(ctx context.Context, before time.Time) (int, error)

	// Destroy removes the whole store. It fails with domain.ErrBlocked while
	// another handle is open.
	Destroy(ctx context.Context) error
}

// LogArchive receives copies of local log events for off-device retention.
type LogArchive interface {
	Archive(ctx context.Context, events []domain.LogEvent) (int, error)
}
