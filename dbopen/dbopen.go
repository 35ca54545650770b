// Package dbopen opens the SQLite databases pica keeps (the hand-off
// journal). Every connection gets WAL, foreign keys and a busy timeout;
// the schema is brought up to date through numbered migrations recorded in
// PRAGMA user_version.
//
// In tests:
//
//	db := dbopen.OpenMemory(t, dbopen.WithMigrations(schemaV1))
package dbopen

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

type options struct {
	busyTimeout int
	mkdirAll    bool
	migrations  []string
}

// Option customises Open.
type Option func(*options)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 5000.
func WithBusyTimeout(ms int) Option { return func(o *options) { o.busyTimeout = ms } }

// WithMkdirAll creates the directory holding the database file.
func WithMkdirAll() Option { return func(o *options) { o.mkdirAll = true } }

// WithMigrations sets the schema history. Migration i (zero based) brings
// the database from user_version i to i+1; steps already applied are
// skipped. Entries must only ever be appended.
func WithMigrations(steps ...string) Option {
	return func(o *options) { o.migrations = append(o.migrations, steps...) }
}

// Open opens the database at path and migrates it.
func Open(path string, opts ...Option) (*sql.DB, error) {
	o := options{busyTimeout: 5000}
	for _, opt := range opts {
		opt(&o)
	}

	if o.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("dbopen: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("dbopen: open %s: %w", path, err)
	}
	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", o.busyTimeout),
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("dbopen: %s: %w", p, err)
		}
	}
	if err := Migrate(db, o.migrations...); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory opens an in-memory database closed on test cleanup. It is
// pinned to one connection: every ":memory:" connection is a database of
// its own.
func OpenMemory(t testing.TB, opts ...Option) *sql.DB {
	t.Helper()
	db, err := Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("dbopen.OpenMemory: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// Version returns the schema version recorded in the database.
func Version(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("dbopen: user_version: %w", err)
	}
	return v, nil
}

// Migrate applies the steps the database has not seen yet, each in its own
// transaction together with the version bump.
func Migrate(db *sql.DB, steps ...string) error {
	have, err := Version(db)
	if err != nil {
		return err
	}
	if have > len(steps) {
		return fmt.Errorf("dbopen: schema version %d is newer than this build (%d)", have, len(steps))
	}
	for v := have; v < len(steps); v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("dbopen: migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(steps[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("dbopen: migration %d: %w", v+1, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("dbopen: migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("dbopen: migration %d: %w", v+1, err)
		}
	}
	return nil
}
