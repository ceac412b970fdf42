package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is not great with many writers
	db.SetMaxIdleConns(1)

	// Pragmas to improve reliability
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA journal_mode=WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA foreign_keys=ON: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA busy_timeout=5000: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaFurnaceState = `
CREATE TABLE IF NOT EXISTS furnace_state (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    sheet_length_mm INTEGER NOT NULL,
    sheet_thickness_mm INTEGER NOT NULL,
    heating_coefficient REAL NOT NULL,
    sheets_in_furnace INTEGER NOT NULL,
    sheets_manual BOOLEAN NOT NULL,
    card_number TEXT NOT NULL,
    sheets_per_batch INTEGER NOT NULL,
    remaining_sheets INTEGER NOT NULL,
    heating_duration_s INTEGER NOT NULL,
    heating_start_ms INTEGER NOT NULL,
    pause_total_ms INTEGER NOT NULL,
    pause_start_ms INTEGER NOT NULL,
    downtime_start_ms INTEGER NOT NULL,
    alarm_start_ms INTEGER NOT NULL,
    alarm_silenced BOOLEAN NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaJournal = `
CREATE TABLE IF NOT EXISTS journal_entries (
    id TEXT PRIMARY KEY,
    furnace_id TEXT NOT NULL,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    card_number TEXT
);
`

const schemaJournalIndex = `
CREATE INDEX IF NOT EXISTS idx_journal_furnace_time
    ON journal_entries (furnace_id, occurred_at);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaFurnaceState,
		schemaJournal,
		schemaJournalIndex,
		schemaUsers,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
