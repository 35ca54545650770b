package dbopen_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hazyhaar/pica/dbopen"
)

var steps = []string{
	`CREATE TABLE t (id INTEGER PRIMARY KEY)`,
	`ALTER TABLE t ADD COLUMN name TEXT NOT NULL DEFAULT ''`,
}

func TestOpenMemory_Pragmas(t *testing.T) {
	db := dbopen.OpenMemory(t)

	var fk, busy int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busy); err != nil {
		t.Fatal(err)
	}
	if fk != 1 || busy != 5000 {
		t.Fatalf("foreign_keys = %d, busy_timeout = %d", fk, busy)
	}
}

func TestOpen_MigratesOnce(t *testing.T) {
	// WHAT: migrations run once, in order, and are recorded in user_version.
	// WHY: reopening an existing journal must not replay its schema.
	path := filepath.Join(t.TempDir(), "nested", "dir", "j.db")

	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithMigrations(steps[:1]...))
	if err != nil {
		t.Fatal(err)
	}
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
	if _, err := dbopen.Exec(context.Background(), db, `INSERT INTO t (id) VALUES (?)`, 1); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = dbopen.Open(path, dbopen.WithMigrations(steps...))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if v, err := dbopen.Version(db); err != nil || v != 2 {
		t.Fatalf("Version = %d, %v; want 2", v, err)
	}
	var name string
	if err := db.QueryRow(`SELECT name FROM t WHERE id = 1`).Scan(&name); err != nil {
		t.Fatalf("row lost across migration: %v", err)
	}
}

func TestMigrate_FailedStepRollsBack(t *testing.T) {
	// WHAT: a failing step leaves the version at the last good step.
	// WHY: each step commits with its version bump or not at all.
	db := dbopen.OpenMemory(t, dbopen.WithMigrations(steps[0]))

	err := dbopen.Migrate(db, steps[0], "NOT SQL")
	if err == nil || !strings.Contains(err.Error(), "migration 2") {
		t.Fatalf("err = %v, want migration 2 failure", err)
	}
	if v, _ := dbopen.Version(db); v != 1 {
		t.Fatalf("Version = %d, want 1", v)
	}
}

func TestMigrate_NewerDatabase(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithMigrations(steps...))
	if err := dbopen.Migrate(db, steps[0]); err == nil {
		t.Fatal("expected error for a database newer than its migrations")
	}
}

func TestOpen_BadMigration(t *testing.T) {
	if _, err := dbopen.Open(":memory:", dbopen.WithMigrations("NOT SQL")); err == nil {
		t.Fatal("expected error")
	}
}

func TestExec_NonBusyErrorNotRetried(t *testing.T) {
	db := dbopen.OpenMemory(t)
	_, err := dbopen.Exec(context.Background(), db, `INSERT INTO missing (id) VALUES (1)`)
	if err == nil || dbopen.IsBusy(err) {
		t.Fatalf("err = %v, want a permanent failure", err)
	}
}

func TestIsBusy(t *testing.T) {
	if !dbopen.IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Error("busy not detected")
	}
	if dbopen.IsBusy(errors.New("no such table")) || dbopen.IsBusy(nil) {
		t.Error("false positive")
	}
}
