// Package audit records control-plane events (create, extend, fault,
// destroy, stats_sweep) to an append-only
// SQLite table (modernc.org/sqlite via database/sql, journal_mode=WAL for
// concurrent writers).
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/google/uuid"

	"vmpager/internal/pager"
)

const schema = `
CREATE TABLE IF NOT EXISTS pager_events (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	trace_id  TEXT NOT NULL,
	pid       INTEGER NOT NULL,
	vaddr     INTEGER NOT NULL,
	kind      TEXT NOT NULL,
	frame     INTEGER NOT NULL,
	block     INTEGER NOT NULL,
	dirty     INTEGER NOT NULL,
	ts_unix_ns INTEGER NOT NULL
);`

// Logger appends pager events to a SQLite-backed ledger. A nil *Logger (or
// one returned by Open with an empty path) is a no-op, so audit is opt-in.
type Logger struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the event table exists. An empty path returns a nil-safe no-op
// Logger.
func Open(path string) (*Logger, error) {
	if path == "" {
		return &Logger{}, nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("audit: enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("audit: create schema: %w", err)
	}
	return &Logger{db: db}, nil
}

// Close releases the underlying database handle. Safe to call on a no-op
// Logger.
func (l *Logger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Event is one row of the ledger. traceID correlates a single RPC call's
// events; it is opaque to the pager core itself, which never generates one.
type Event struct {
	TraceID string
	Pid     pager.PID
	Vaddr   uintptr
	Kind    string
	Frame   pager.FrameID
	Block   pager.BlockID
	Dirty   bool
}

// Record inserts one event. Always called after the pager call it
// describes has already returned — never from inside a held pager lock,
// so a slow disk write never stalls the fault path. ctx bounds the insert
// itself (e.g. an RPC handler's request deadline); it carries no
// transaction or cancellation semantics into the pager core.
func (l *Logger) Record(ctx context.Context, e Event) error {
	if l == nil || l.db == nil {
		return nil
	}
	dirty := 0
	if e.Dirty {
		dirty = 1
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO pager_events (trace_id, pid, vaddr, kind, frame, block, dirty, ts_unix_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TraceID, int64(e.Pid), int64(e.Vaddr), e.Kind, int64(e.Frame), int64(e.Block), dirty, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("audit: record %s: %w", e.Kind, err)
	}
	return nil
}

// NewTraceID mints a correlation id for one RPC-level operation.
func NewTraceID() string {
	return uuid.NewString()
}
