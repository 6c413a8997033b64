// Package sqlite stores the local event log in a SQLite file.
//
// Every logical operation opens its own handle, performs its work and
// closes the handle again. Destroying the file is refused while any
// handle on it is open in this process.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vicebank/vicebank-client/internal/core/domain"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// HandleState is the lifecycle of one connection handle.
type HandleState int

const (
	StateClosed HandleState = iota
	StateOpening
	StateOpen
)

func (s HandleState) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}

// registry counts open handles per database file.
var registry = struct {
	mu   sync.Mutex
	open map[string]int
}{open: make(map[string]int)}

func acquire(path string) {
	registry.mu.Lock()
	registry.open[path]++
	registry.mu.Unlock()
}

func release(path string) {
	registry.mu.Lock()
	if registry.open[path] <= 1 {
		delete(registry.open, path)
	} else {
		registry.open[path]--
	}
	registry.mu.Unlock()
}

// OpenHandles reports how many handles on path are currently open.
func OpenHandles(path string) int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return registry.open[canonical(path)]
}

func canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

type handle struct {
	path  string
	db    *sql.DB
	state HandleState
}

// openHandle moves a new handle from Closed through Opening to Open. A
// handle counts as open from the moment opening starts.
func openHandle(ctx context.Context, path string) (*handle, error) {
	h := &handle{path: path, state: StateOpening}
	acquire(path)

	db, err := open(ctx, path)
	if err != nil {
		h.state = StateClosed
		release(path)
		return nil, &domain.StorageError{Op: "open " + path, Kind: domain.ErrStorageUnavailable, Err: err}
	}
	h.db = db
	h.state = StateOpen
	return h, nil
}

func (h *handle) close() error {
	if h.state == StateClosed {
		return nil
	}
	h.state = StateClosed
	defer release(h.path)
	return h.db.Close()
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection per handle: SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// applySchema creates the table on first use and stamps the version. There
// are no migrations beyond creation.
func applySchema(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, schemaVersion)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if version < schemaVersion {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// destroy removes the database file and its side files. The caller holds
// registry.mu.
func destroy(path string) error {
	var errs []error
	for _, p := range []string{path, path + "-wal", path + "-shm", path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
