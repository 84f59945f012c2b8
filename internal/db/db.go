package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the journal database inside the base directory.
const FileName = "state.db"

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init opens the sync journal at baseDir/state.db, creating and migrating it
// as needed. The baseDir parameter allows tests to use t.TempDir() instead of
// ~/.plusblocks.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the DSN apply to every pooled connection
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: sync journal
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS sync_runs (
		  id             TEXT PRIMARY KEY,
		  mode           TEXT NOT NULL,
		  category       TEXT,
		  block          TEXT,
		  force          INTEGER NOT NULL DEFAULT 0,
		  metadata_only  INTEGER NOT NULL DEFAULT 0,
		  status         TEXT NOT NULL,
		  blocks_total   INTEGER NOT NULL DEFAULT 0,
		  blocks_synced  INTEGER NOT NULL DEFAULT 0,
		  blocks_skipped INTEGER NOT NULL DEFAULT 0,
		  blocks_failed  INTEGER NOT NULL DEFAULT 0,
		  variants       INTEGER NOT NULL DEFAULT 0,
		  codes          INTEGER NOT NULL DEFAULT 0,
		  error          TEXT,
		  started_at     INTEGER NOT NULL,
		  finished_at    INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_sync_runs_started
		ON sync_runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS sync_failures (
		  id         INTEGER PRIMARY KEY AUTOINCREMENT,
		  run_id     TEXT NOT NULL REFERENCES sync_runs(id) ON DELETE CASCADE,
		  block_key  TEXT NOT NULL,
		  code       TEXT,
		  message    TEXT NOT NULL,
		  created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sync_failures_run
		ON sync_failures(run_id, id);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
