package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vicebank/vicebank-client/internal/core/domain"
	"github.com/vicebank/vicebank-client/internal/core/ports"
)

// Direction orders a scan by key.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// ScanOptions bounds a scan. Lower is inclusive and Upper exclusive; an
// empty bound is open.
type ScanOptions struct {
	Lower     string
	Upper     string
	Direction Direction
}

// Record is one stored row.
type Record struct {
	Key     string
	Payload []byte
}

// payload is the stored JSON form of a domain.LogEvent. Fields are
// pointers so that a record missing one is detected as malformed.
type payload struct {
	ID        *string    `json:"id"`
	Message   *string    `json:"message"`
	Level     *string    `json:"level"`
	Timestamp *time.Time `json:"timestamp"`
}

// EventLogRepository implements ports.EventLogRepository on one SQLite
// file.
type EventLogRepository struct {
	path string
	log  zerolog.Logger
}

var _ ports.EventLogRepository = (*EventLogRepository)(nil)

func NewEventLogRepository(path string, log zerolog.Logger) *EventLogRepository {
	return &EventLogRepository{path: canonical(path), log: log}
}

// Path is the database file.
func (r *EventLogRepository) Path() string { return r.path }

func (r *EventLogRepository) Add(ctx context.Context, event domain.LogEvent) error {
	body, err := json.Marshal(payload{
		ID:        &event.ID,
		Message:   &event.Message,
		Level:     (*string)(&event.Level),
		Timestamp: &event.Timestamp,
	})
	if err != nil {
		return &domain.StorageError{Op: "add log event", Kind: domain.ErrPersistence, Err: err}
	}

	h, err := openHandle(ctx, r.path)
	if err != nil {
		return err
	}
	defer h.close()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Op: "add log event", Kind: domain.ErrPersistence, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO log_events (db_index, payload) VALUES (?, ?)",
		event.DBIndex(), string(body),
	); err != nil {
		return &domain.StorageError{Op: "add log event", Kind: domain.ErrPersistence, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &domain.StorageError{Op: "add log event", Kind: domain.ErrPersistence, Err: err}
	}
	return nil
}

// Scan yields rows in key order within opts. Each iteration opens its own
// handle, so the sequence can be ranged over more than once; breaking out
// of the loop closes the handle.
func (r *EventLogRepository) Scan(ctx context.Context, opts ScanOptions) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		h, err := openHandle(ctx, r.path)
		if err != nil {
			yield(Record{}, err)
			return
		}
		defer h.close()
		h.scan(ctx, opts)(yield)
	}
}

func (h *handle) scan(ctx context.Context, opts ScanOptions) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		query, args := scanQuery(opts)
		rows, err := h.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(Record{}, &domain.StorageError{Op: "scan log events", Kind: domain.ErrStorageUnavailable, Err: err})
			return
		}
		defer rows.Close()

		for rows.Next() {
			var rec Record
			var body string
			if err := rows.Scan(&rec.Key, &body); err != nil {
				yield(Record{}, fmt.Errorf("scan log events: %w", err))
				return
			}
			rec.Payload = []byte(body)
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Record{}, fmt.Errorf("scan log events: %w", err))
		}
	}
}

func scanQuery(opts ScanOptions) (string, []any) {
	var where []string
	var args []any
	if opts.Lower != "" {
		where = append(where, "db_index >= ?")
		args = append(args, opts.Lower)
	}
	if opts.Upper != "" {
		where = append(where, "db_index < ?")
		args = append(args, opts.Upper)
	}

	var b strings.Builder
	b.WriteString("SELECT db_index, payload FROM log_events")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if opts.Direction == Backward {
		b.WriteString(" ORDER BY db_index DESC")
	} else {
		b.WriteString(" ORDER BY db_index ASC")
	}
	return b.String(), args
}

// Recent returns events at or after since, newest first. Malformed records
// are skipped with a warning.
func (r *EventLogRepository) Recent(ctx context.Context, since time.Time) ([]domain.LogEvent, error) {
	var events []domain.LogEvent
	for rec, err := range r.Scan(ctx, ScanOptions{Lower: domain.IndexKey(since), Direction: Backward}) {
		if err != nil {
			return nil, err
		}
		event, err := decodeEvent(rec.Payload)
		if err != nil {
			r.log.Warn().Str("key", rec.Key).Err(err).Msg("skipping malformed log record")
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// DeleteBefore walks forward from the oldest key, stops at the first key
// at or after before, and deletes every record it passed. Records are
// selected by key alone, so malformed ones are removed too.
func (r *EventLogRepository) DeleteBefore(ctx context.Context, before time.Time) (int, error) {
	h, err := openHandle(ctx, r.path)
	if err != nil {
		return 0, err
	}
	defer h.close()

	boundary := domain.IndexKey(before)
	var keys []string
	for rec, err := range h.scan(ctx, ScanOptions{Direction: Forward}) {
		if err != nil {
			return 0, err
		}
		if rec.Key >= boundary {
			break
		}
		keys = append(keys, rec.Key)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &domain.StorageError{Op: "delete log events", Kind: domain.ErrPersistence, Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM log_events WHERE db_index = ?")
	if err != nil {
		return 0, &domain.StorageError{Op: "delete log events", Kind: domain.ErrPersistence, Err: err}
	}
	defer stmt.Close()

	for _, key := range keys {
		if _, err := stmt.ExecContext(ctx, key); err != nil {
			return 0, &domain.StorageError{Op: "delete log events", Kind: domain.ErrPersistence, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, &domain.StorageError{Op: "delete log events", Kind: domain.ErrPersistence, Err: err}
	}
	return len(keys), nil
}

// Destroy deletes the database file. It fails with domain.ErrBlocked while
// any handle on the file is open.
func (r *EventLogRepository) Destroy(_ context.Context) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if n := registry.open[r.path]; n > 0 {
		return &domain.StorageError{
			Op:   "destroy log database",
			Kind: domain.ErrBlocked,
			Err:  fmt.Errorf("%d open handle(s)", n),
		}
	}
	if err := destroy(r.path); err != nil {
		return &domain.StorageError{Op: "destroy log database", Kind: domain.ErrPersistence, Err: err}
	}
	return nil
}

// Ping opens the database, applying the schema if needed, and closes it.
func (r *EventLogRepository) Ping(ctx context.Context) error {
	h, err := openHandle(ctx, r.path)
	if err != nil {
		return err
	}
	defer h.close()
	return h.db.PingContext(ctx)
}

func decodeEvent(raw []byte) (domain.LogEvent, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.LogEvent{}, err
	}
	switch {
	case p.ID == nil || *p.ID == "":
		return domain.LogEvent{}, errors.New("missing id")
	case p.Message == nil:
		return domain.LogEvent{}, errors.New("missing message")
	case p.Level == nil || !domain.LogLevel(*p.Level).Valid():
		return domain.LogEvent{}, errors.New("missing or unknown level")
	case p.Timestamp == nil:
		return domain.LogEvent{}, errors.New("missing timestamp")
	}
	return domain.LogEvent{
		ID:        *p.ID,
		Message:   *p.Message,
		Level:     domain.LogLevel(*p.Level),
		Timestamp: p.Timestamp.UTC(),
	}, nil
}
