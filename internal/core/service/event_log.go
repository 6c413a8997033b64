package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/ports"
	"github.com/vicebank/vicebank-client/internal/infrastructure/metrics"
)

// ErrArchiveDisabled is returned by Export when no archive is configured.
var ErrArchiveDisabled = errors.New("log archive not configured")

// EventLog is the durable local diagnostic log.
type EventLog struct {
	repo    ports.EventLogRepository
	archive ports.LogArchive
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string
}

// EventLogOption customises an EventLog.
type EventLogOption func(*EventLog)

// WithClock replaces time.Now for event timestamps and the retention
// boundary.
func WithClock(now func() time.Time) EventLogOption {
	return func(l *EventLog) { l.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(newID func() string) EventLogOption {
	return func(l *EventLog) { l.newID = newID }
}

// WithArchive enables Export.
func WithArchive(archive ports.LogArchive) EventLogOption {
	return func(l *EventLog) { l.archive = archive }
}

func NewEventLog(repo ports.EventLogRepository, log zerolog.Logger, opts ...EventLogOption) *EventLog {
	l := &EventLog{
		repo:  repo,
		log:   log.With().Str("component", "event_log").Logger(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type appendConfig struct {
	timestamp time.Time
}

// AppendOption customises a single Append.
type AppendOption func(*appendConfig)

// WithTimestamp records the event at t instead of now.
func WithTimestamp(t time.Time) AppendOption {
	return func(c *appendConfig) { c.timestamp = t }
}

// Append stores a new event and returns it. Timestamps are kept at
// millisecond precision in UTC.
func (l *EventLog) Append(ctx context.Context, message string, level domain.LogLevel, opts ...AppendOption) (domain.LogEvent, error) {
	if !level.Valid() {
		return domain.LogEvent{}, fmt.Errorf("append log event: unknown level %q", level)
	}
	cfg := appendConfig{timestamp: l.now()}
	for _, opt := range opts {
		opt(&cfg)
	}

	event := domain.LogEvent{
		ID:        l.newID(),
		Message:   message,
		Level:     level,
		Timestamp: cfg.timestamp.UTC().Truncate(time.Millisecond),
	}
	err := l.repo.Add(ctx, event)
	metrics.ObserveAppend(level, err)
	if err != nil {
		return domain.LogEvent{}, fmt.Errorf("append log event: %w", err)
	}
	return event, nil
}

func (l *EventLog) Info(ctx context.Context, message string) {
	l.appendQuietly(ctx, message, domain.LevelInfo)
}

func (l *EventLog) Warn(ctx context.Context, message string) {
	l.appendQuietly(ctx, message, domain.LevelWarning)
}

func (l *EventLog) Error(ctx context.Context, message string) {
	l.appendQuietly(ctx, message, domain.LevelError)
}

// appendQuietly reports a failed append on the console logger only.
func (l *EventLog) appendQuietly(ctx context.Context, message string, level domain.LogLevel) {
	if _, err := l.Append(ctx, message, level); err != nil {
		l.log.Error().Err(err).Str("level", string(level)).Str("log_message", message).Msg("failed to write local log event")
	}
}

// ReadRecent returns the events inside the retention window, newest first.
func (l *EventLog) ReadRecent(ctx context.Context) ([]domain.LogEvent, error) {
	events, err := l.repo.Recent(ctx, RetentionBoundary(l.now()))
	if err != nil {
		return nil, fmt.Errorf("read recent log events: %w", err)
	}
	return events, nil
}

// Prune deletes every event older than the retention window and reports
// how many were removed.
func (l *EventLog) Prune(ctx context.Context) (int, error) {
	boundary := RetentionBoundary(l.now())
	n, err := l.repo.DeleteBefore(ctx, boundary)
	if err != nil {
		return 0, fmt.Errorf("prune log events: %w", err)
	}
	metrics.LogEventsPrunedTotal.Add(float64(n))
	l.log.Debug().Time("before", boundary).Int("deleted", n).Msg("pruned log events")
	return n, nil
}

// Clear destroys the whole log store.
func (l *EventLog) Clear(ctx context.Context) error {
	if err := l.repo.Destroy(ctx); err != nil {
		return fmt.Errorf("clear log events: %w", err)
	}
	return nil
}

// Export copies the retained events to the archive.
func (l *EventLog) Export(ctx context.Context) (int, error) {
	if l.archive == nil {
		return 0, ErrArchiveDisabled
	}
	events, err := l.ReadRecent(ctx)
	if err != nil {
		return 0, fmt.Errorf("export log events: %w", err)
	}
	n, err := l.archive.Archive(ctx, events)
	if err != nil {
		return 0, fmt.Errorf("export log events: %w", err)
	}
	return n, nil
}
