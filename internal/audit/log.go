package audit

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/roach88/opptrack/internal/sqlitedb"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	// ErrNotFound is returned when no entry has the requested key.
	ErrNotFound = errors.New("audit entry not found")

	// ErrInvalidEntry is returned for entries that cannot be keyed or lack an action.
	ErrInvalidEntry = errors.New("invalid audit entry")
)

// Log is the audit store.
type Log struct {
	db  *sql.DB
	now func() time.Time

	closeOnce sync.Once
}

// Option configures a Log.
type Option func(*Log)

// WithNow overrides the clock used for CreatedAt.
func WithNow(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Migrations returns the embedded schema files.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Open opens (creating if needed) the audit database at path.
func Open(ctx context.Context, path string, opts ...Option) (*Log, error) {
	db, err := sqlitedb.Open(ctx, path, Migrations())
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return newLog(db, opts...), nil
}

func newLog(db *sql.DB, opts ...Option) *Log {
	l := &Log{db: db, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Close releases the connection. Calling it again is a no-op.
func (l *Log) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.db != nil {
			err = l.db.Close()
		}
	})
	return err
}
