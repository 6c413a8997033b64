package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

// memoryLogRepo keeps events keyed by DBIndex, like the SQLite table.
type memoryLogRepo struct {
	mu         sync.Mutex
	events     map[string]domain.LogEvent
	addErr     error
	destroyErr error
}

func newMemoryLogRepo() *memoryLogRepo {
	return &memoryLogRepo{events: make(map[string]domain.LogEvent)}
}

func (r *memoryLogRepo) Add(_ context.Context, e domain.LogEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return r.addErr
	}
	if _, ok := r.events[e.DBIndex()]; ok {
		return &domain.StorageError{Op: "add", Kind: domain.ErrPersistence}
	}
	r.events[e.DBIndex()] = e
	return nil
}

func (r *memoryLogRepo) sortedKeys() []string {
	keys := make([]string, 0, len(r.events))
	for k := range r.events {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *memoryLogRepo) Recent(_ context.Context, since time.Time) ([]domain.LogEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lower := domain.IndexKey(since)
	keys := r.sortedKeys()
	var out []domain.LogEvent
	for i := len(keys) - 1; i >= 0; i-- {
		if keys[i] < lower {
			break
		}
		out = append(out, r.events[keys[i]])
	}
	return out, nil
}

func (r *memoryLogRepo) DeleteBefore(_ context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	boundary := domain.IndexKey(before)
	n := 0
	for _, k := range r.sortedKeys() {
		if k >= boundary {
			break
		}
		delete(r.events, k)
		n++
	}
	return n, nil
}

func (r *memoryLogRepo) Destroy(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyErr != nil {
		return r.destroyErr
	}
	r.events = make(map[string]domain.LogEvent)
	return nil
}

type stubArchive struct {
	got []domain.LogEvent
	err error
}

func (a *stubArchive) Archive(_ context.Context, events []domain.LogEvent) (int, error) {
	if a.err != nil {
		return 0, a.err
	}
	a.got = append(a.got, events...)
	return len(events), nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

func newTestEventLog(now time.Time, opts ...EventLogOption) (*EventLog, *memoryLogRepo) {
	repo := newMemoryLogRepo()
	opts = append([]EventLogOption{
		WithClock(func() time.Time { return now }),
		WithIDGenerator(sequentialIDs()),
	}, opts...)
	return NewEventLog(repo, zerolog.Nop(), opts...), repo
}

func TestRetentionBoundary(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC), time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		// Local midnight on Oct 1 in UTC-6 is still Oct 1 in UTC.
		{time.Date(2026, 9, 30, 20, 0, 0, 0, time.FixedZone("CST", -6*3600)), time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		assert.True(t, tc.want.Equal(RetentionBoundary(tc.now)), "now=%s got=%s", tc.now, RetentionBoundary(tc.now))
	}
}

func TestAppend_ThenReadRecent(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	l, _ := newTestEventLog(now)
	ctx := context.Background()

	first, err := l.Append(ctx, "first", domain.LevelInfo, WithTimestamp(now.Add(-time.Hour)))
	require.NoError(t, err)
	second, err := l.Append(ctx, "second", domain.LevelError)
	require.NoError(t, err)

	got, err := l.ReadRecent(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second, got[0])
	assert.Equal(t, first, got[1])
	assert.Equal(t, "id-001", first.ID)
}

func TestAppend_NormalisesTimestamp(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 0, 0, 123_456_789, time.FixedZone("CST", -6*3600))
	l, _ := newTestEventLog(now)

	e, err := l.Append(context.Background(), "x", domain.LevelWarning)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, e.Timestamp.Location())
	assert.Equal(t, 123_000_000, e.Timestamp.Nanosecond())
	assert.Equal(t, "2026-10-14T15:00:00.123Z-id-001", e.DBIndex())
}

func TestAppend_RejectsUnknownLevel(t *testing.T) {
	l, repo := newTestEventLog(time.Now())
	_, err := l.Append(context.Background(), "x", domain.LogLevel("fatal"))
	assert.Error(t, err)
	assert.Empty(t, repo.events)
}

func TestAppend_PersistenceFailure(t *testing.T) {
	l, repo := newTestEventLog(time.Now())
	repo.addErr = &domain.StorageError{Op: "add", Kind: domain.ErrPersistence}

	_, err := l.Append(context.Background(), "x", domain.LevelInfo)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestLevelHelpers_SwallowFailures(t *testing.T) {
	l, repo := newTestEventLog(time.Now())
	ctx := context.Background()

	l.Info(ctx, "info")
	l.Warn(ctx, "warn")
	l.Error(ctx, "error")
	require.Len(t, repo.events, 3)

	repo.addErr = errors.New("disk full")
	assert.NotPanics(t, func() { l.Error(ctx, "lost") })
	assert.Len(t, repo.events, 3)
}

func TestReadRecent_ExcludesEventsBeforeBoundary(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	l, _ := newTestEventLog(now)
	ctx := context.Background()

	_, err := l.Append(ctx, "august", domain.LevelInfo, WithTimestamp(time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)))
	require.NoError(t, err)
	_, err = l.Append(ctx, "september", domain.LevelInfo, WithTimestamp(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	got, err := l.ReadRecent(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "september", got[0].Message)
}

func TestPrune_KeepsCurrentAndPreviousMonth(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	l, repo := newTestEventLog(now)
	ctx := context.Background()

	stamps := map[string]time.Time{
		"T-2mo":      now.AddDate(0, -2, 0),
		"T-1mo-1day": now.AddDate(0, -1, -1),
		"T-1mo":      now.AddDate(0, -1, 0),
		"T":          now,
	}
	for msg, ts := range stamps {
		_, err := l.Append(ctx, msg, domain.LevelInfo, WithTimestamp(ts))
		require.NoError(t, err)
	}

	n, err := l.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var left []string
	for _, e := range repo.events {
		left = append(left, e.Message)
	}
	sort.Strings(left)
	assert.Equal(t, []string{"T", "T-1mo"}, left)

	n, err = l.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "pruning twice removes nothing more")
}

func TestClear(t *testing.T) {
	l, repo := newTestEventLog(time.Now())
	ctx := context.Background()
	l.Info(ctx, "x")

	require.NoError(t, l.Clear(ctx))
	assert.Empty(t, repo.events)

	repo.destroyErr = &domain.StorageError{Op: "destroy", Kind: domain.ErrBlocked}
	assert.ErrorIs(t, l.Clear(ctx), domain.ErrBlocked)
}

func TestExport(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	disabled, _ := newTestEventLog(now)
	_, err := disabled.Export(ctx)
	assert.ErrorIs(t, err, ErrArchiveDisabled)

	archive := &stubArchive{}
	l, _ := newTestEventLog(now, WithArchive(archive))
	l.Info(ctx, "one")
	l.Info(ctx, "two")

	n, err := l.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, archive.got, 2)

	archive.err = errors.New("mongo down")
	_, err = l.Export(ctx)
	assert.Error(t, err)
}
