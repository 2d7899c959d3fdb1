package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/opptrack/internal/lifecycle"
	"github.com/roach88/opptrack/internal/model"
	"github.com/roach88/opptrack/internal/sqlitedb"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// Store provides durable storage for opportunities and their events.
type Store struct {
	db       *sql.DB
	validate *validator.Validate

	closeOnce sync.Once
}

// Migrations returns the embedded schema files.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Open creates or opens the store at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlitedb.Open(ctx, path, Migrations())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return newStore(db), nil
}

func newStore(db *sql.DB) *Store {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("lifecycle_state", func(fl validator.FieldLevel) bool {
		return lifecycle.Valid(model.State(fl.Field().String()))
	})
	return &Store{db: db, validate: v}
}

// Close closes the database connection. Calling it again is a no-op.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.db != nil {
			err = s.db.Close()
		}
	})
	return err
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}
