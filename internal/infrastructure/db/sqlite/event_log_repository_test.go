package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

func newTestRepo(t *testing.T) *EventLogRepository {
	t.Helper()
	return NewEventLogRepository(filepath.Join(t.TempDir(), "logs", "logging.db"), zerolog.Nop())
}

func event(id string, ts time.Time) domain.LogEvent {
	return domain.LogEvent{ID: id, Message: "message " + id, Level: domain.LevelInfo, Timestamp: ts}
}

// insertRaw stores an arbitrary payload under key.
func insertRaw(t *testing.T, r *EventLogRepository, key, body string) {
	t.Helper()
	h, err := openHandle(context.Background(), r.path)
	require.NoError(t, err)
	defer h.close()
	_, err = h.db.Exec("INSERT INTO log_events (db_index, payload) VALUES (?, ?)", key, body)
	require.NoError(t, err)
}

func keys(t *testing.T, r *EventLogRepository) []string {
	t.Helper()
	var out []string
	for rec, err := range r.Scan(context.Background(), ScanOptions{}) {
		require.NoError(t, err)
		out = append(out, rec.Key)
	}
	return out
}

func TestOpen_CreatesDatabaseWithSchemaVersion(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Add(ctx, event("a", time.Now())))

	_, err := os.Stat(r.Path())
	require.NoError(t, err, "database file was not created")

	db, err := sql.Open("sqlite3", r.Path())
	require.NoError(t, err)
	defer db.Close()
	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestOpen_UnavailableStorage(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	r := NewEventLogRepository(filepath.Join(blocker, "logging.db"), zerolog.Nop())
	err := r.Add(context.Background(), event("a", time.Now()))
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, 0, OpenHandles(r.Path()))
}

func TestAdd_ThenRecentNewestFirst(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.Add(ctx, event("a", base)))
	require.NoError(t, r.Add(ctx, event("b", base.Add(time.Minute))))
	require.NoError(t, r.Add(ctx, event("c", base.Add(2*time.Minute))))

	got, err := r.Recent(ctx, base)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.True(t, got[2].Timestamp.Equal(base))
	assert.Equal(t, "message a", got[2].Message)
	assert.Equal(t, domain.LevelInfo, got[2].Level)
	assert.Equal(t, 0, OpenHandles(r.Path()))
}

func TestRecent_ExcludesOlderEvents(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	since := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Add(ctx, event("old", since.Add(-time.Millisecond))))
	require.NoError(t, r.Add(ctx, event("edge", since)))
	require.NoError(t, r.Add(ctx, event("new", since.Add(time.Hour))))

	got, err := r.Recent(ctx, since)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "edge", got[1].ID)
}

func TestRecent_SkipsMalformedRecords(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	ts := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.Add(ctx, event("good", ts)))
	insertRaw(t, r, domain.IndexKey(ts.Add(time.Second))+"-bad1", "not json")
	insertRaw(t, r, domain.IndexKey(ts.Add(2*time.Second))+"-bad2", `{"id":"bad2","message":"x","level":"fatal","timestamp":"2026-10-14T09:00:02Z"}`)
	insertRaw(t, r, domain.IndexKey(ts.Add(3*time.Second))+"-bad3", `{"id":"bad3","level":"info"}`)

	got, err := r.Recent(ctx, ts)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].ID)
}

func TestAdd_DuplicateKeyIsPersistenceError(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	e := event("same", time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))

	require.NoError(t, r.Add(ctx, e))
	err := r.Add(ctx, e)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Len(t, keys(t, r), 1)
}

func TestScan_OrderAndBounds(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, r.Add(ctx, event(id, base.Add(time.Duration(i)*time.Hour))))
	}

	var backward []string
	opts := ScanOptions{
		Lower:     domain.IndexKey(base.Add(time.Hour)),
		Upper:     domain.IndexKey(base.Add(3 * time.Hour)),
		Direction: Backward,
	}
	for rec, err := range r.Scan(ctx, opts) {
		require.NoError(t, err)
		backward = append(backward, rec.Key)
	}
	require.Len(t, backward, 2)
	assert.Greater(t, backward[0], backward[1])

	// The sequence restarts from the beginning on every range.
	first, second := keys(t, r), keys(t, r)
	assert.Equal(t, first, second)
	assert.Len(t, first, 4)
}

func TestScan_BreakClosesHandle(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Add(ctx, event("a", time.Now())))
	require.NoError(t, r.Add(ctx, event("b", time.Now().Add(time.Second))))

	for range r.Scan(ctx, ScanOptions{}) {
		assert.Equal(t, 1, OpenHandles(r.Path()))
		break
	}
	assert.Equal(t, 0, OpenHandles(r.Path()))
}

func TestDeleteBefore_RemovesOnlyOlderRecords(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	boundary := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Add(ctx, event("old1", boundary.AddDate(0, -1, 0))))
	require.NoError(t, r.Add(ctx, event("old2", boundary.Add(-24*time.Hour))))
	require.NoError(t, r.Add(ctx, event("edge", boundary)))
	require.NoError(t, r.Add(ctx, event("new", boundary.AddDate(0, 1, 0))))
	insertRaw(t, r, domain.IndexKey(boundary.Add(-time.Hour))+"-corrupt", "{")

	n, err := r.DeleteBefore(ctx, boundary)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := r.Recent(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "edge", got[1].ID)
	assert.Len(t, keys(t, r), 2)
}

func TestDeleteBefore_EmptyStore(t *testing.T) {
	r := newTestRepo(t)
	n, err := r.DeleteBefore(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDestroy_BlockedWhileScanOpen(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Add(ctx, event("a", time.Now())))

	var blockedErr error
	for _, err := range r.Scan(ctx, ScanOptions{}) {
		require.NoError(t, err)
		blockedErr = r.Destroy(ctx)
		break
	}
	require.Error(t, blockedErr)
	assert.True(t, errors.Is(blockedErr, domain.ErrBlocked))

	_, err := os.Stat(r.Path())
	assert.NoError(t, err, "blocked destroy must keep the file")
}

func TestDestroy_RemovesFiles(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Add(ctx, event("a", time.Now())))

	require.NoError(t, r.Destroy(ctx))
	_, err := os.Stat(r.Path())
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// A destroyed store is recreated empty on next use.
	assert.Empty(t, keys(t, r))

	// Destroying a missing store is not an error.
	require.NoError(t, os.Remove(r.Path()))
	assert.NoError(t, r.Destroy(ctx))
}

func TestPing_ReleasesHandle(t *testing.T) {
	r := newTestRepo(t)

	require.NoError(t, r.Ping(context.Background()))
	assert.Equal(t, 0, OpenHandles(r.Path()))
}
