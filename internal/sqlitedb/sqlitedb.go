// Package sqlitedb opens embedded SQLite databases and applies ordered,
// idempotent schema migrations.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//   - a single open connection: SQLite has one writer at a time
//
// # Migrations
//
// Migrations are *.sql files read from an fs.FS, usually an embed.FS. They
// run in lexicographic filename order on every Open, so each file must be
// safe to re-execute (CREATE ... IF NOT EXISTS and friends). PRAGMA
// user_version records how many files were applied.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Open creates or opens the database at dsn, applies pragmas and runs the
// migrations found in migrations. The connection is closed again when any
// step fails.
func Open(ctx context.Context, dsn string, migrations fs.FS) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := Migrate(ctx, db, migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Files lists the *.sql files at the root of migrations in lexicographic
// order.
func Files(migrations fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	// fs.ReadDir returns entries sorted by filename.
	var names []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Migrate executes every migration file in order and returns the names
// applied.
func Migrate(ctx context.Context, db *sql.DB, migrations fs.FS) ([]string, error) {
	names, err := Files(migrations)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		body, err := fs.ReadFile(migrations, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(body)) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return nil, fmt.Errorf("migration %s: %w", name, err)
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", len(names))); err != nil {
		return nil, fmt.Errorf("set user_version: %w", err)
	}
	return names, nil
}

// UserVersion reports the PRAGMA user_version of db.
func UserVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}
