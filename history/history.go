// Package history stores connection events in a local SQLite database.
// It opens the database, enables WAL mode and runs the schema migration.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/yllada/snx-gui/common"
)

// Kind names what happened.
type Kind string

const (
	KindConnectRequested    Kind = "connect_requested"
	KindDisconnectRequested Kind = "disconnect_requested"
	KindConnected           Kind = "connected"
	KindDisconnected        Kind = "disconnected"
	KindServiceUp           Kind = "service_up"
	KindServiceDown         Kind = "service_down"
	KindError               Kind = "error"
)

// Event is one row of the history.
type Event struct {
	ID     string
	At     time.Time
	Kind   Kind
	Server string
	Detail string
}

// NewEvent creates an event stamped with a fresh id and the current time.
func NewEvent(kind Kind, server, detail string) Event {
	return Event{
		ID:     uuid.NewString(),
		At:     time.Now().UTC(),
		Kind:   kind,
		Server: server,
		Detail: detail,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id        TEXT PRIMARY KEY,
	timestamp INTEGER NOT NULL,
	kind      TEXT NOT NULL,
	server    TEXT NOT NULL DEFAULT '',
	detail    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
`

// Store is the event database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs the migration.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Single connection: one writer, and ":memory:" stays one database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &Store{db: db}, nil
}

// DefaultPath returns the database location in the data directory.
func DefaultPath() (string, error) {
	dir, err := common.GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, common.HistoryFileName), nil
}

// Record inserts an event. Events without an id or time get one.
func (s *Store) Record(ctx context.Context, e Event) error {
	if s == nil || s.db == nil {
		return common.ErrHistoryDisabled
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, timestamp, kind, server, detail) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.At.UnixMilli(), string(e.Kind), e.Server, e.Detail)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if s == nil || s.db == nil {
		return nil, common.ErrHistoryDisabled
	}
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, kind, server, detail FROM events
		 ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e  Event
			ms int64
			k  string
		)
		if err := rows.Scan(&e.ID, &ms, &k, &e.Server, &e.Detail); err != nil {
			return nil, err
		}
		e.At = time.UnixMilli(ms).UTC()
		e.Kind = Kind(k)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Prune deletes events older than the given age and returns how many
// rows were removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.pruneBefore(ctx, time.Now().UTC().Add(-olderThan))
}

func (s *Store) pruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("history store is not open")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE timestamp < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
