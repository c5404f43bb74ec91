package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteCache implements Cache on a local SQLite database.
type SQLiteCache struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open opens (or creates) a SQLite database at path, enables WAL mode,
// and runs any pending schema migrations.
func Open(path string) (*SQLiteCache, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db, now: time.Now}
	if err := c.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (c *SQLiteCache) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := c.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = c.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := c.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// Replace swaps the snapshot of kind inside one transaction.
func (c *SQLiteCache) Replace(ctx context.Context, kind string, entries []Entry) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE kind = ?", kind); err != nil {
		return fmt.Errorf("clearing %s snapshot: %w", kind, err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR REPLACE INTO snapshots (kind, id, position, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer stmt.Close()

	fetchedAt := c.now().UnixMilli()
	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, kind, e.ID, i, e.Payload, fetchedAt); err != nil {
			return fmt.Errorf("writing %s %s: %w", kind, e.ID, err)
		}
	}

	return tx.Commit()
}

// Put inserts or replaces one entry. Existing entries keep their
// position.
func (c *SQLiteCache) Put(ctx context.Context, kind string, e Entry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO snapshots (kind, id, position, payload, fetched_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM snapshots WHERE kind = ?), ?, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		kind, e.ID, kind, e.Payload, c.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("writing %s %s: %w", kind, e.ID, err)
	}
	return nil
}

// Delete removes one entry. Deleting a missing entry is not an error.
func (c *SQLiteCache) Delete(ctx context.Context, kind, id string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM snapshots WHERE kind = ? AND id = ?", kind, id)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", kind, id, err)
	}
	return nil
}

// Load returns the entries of kind in stored order.
func (c *SQLiteCache) Load(ctx context.Context, kind string) ([]Entry, error) {
	entries := []Entry{}
	err := c.db.SelectContext(ctx, &entries,
		"SELECT id, payload FROM snapshots WHERE kind = ? ORDER BY position, id", kind,
	)
	if err != nil {
		return nil, fmt.Errorf("loading %s snapshot: %w", kind, err)
	}
	return entries, nil
}

// Clear drops every snapshot and the sync log.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM sync_log"); err != nil {
		return fmt.Errorf("clearing sync log: %w", err)
	}
	return nil
}

// RecordSync stores the outcome of a refresher run.
func (c *SQLiteCache) RecordSync(ctx context.Context, name string, at time.Time, syncErr error) error {
	msg := ""
	if syncErr != nil {
		msg = syncErr.Error()
	}
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO sync_log (name, last_sync, last_error) VALUES (?, ?, ?)",
		name, at.UnixMilli(), msg,
	)
	if err != nil {
		return fmt.Errorf("recording sync %s: %w", name, err)
	}
	return nil
}

// LastSync returns when name last ran and its error text. A refresher
// that never ran yields the zero time.
func (c *SQLiteCache) LastSync(ctx context.Context, name string) (time.Time, string, error) {
	var row struct {
		LastSync  int64  `db:"last_sync"`
		LastError string `db:"last_error"`
	}
	err := c.db.GetContext(ctx, &row, "SELECT last_sync, last_error FROM sync_log WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, "", nil
	}
	if err != nil {
		return time.Time{}, "", fmt.Errorf("reading sync %s: %w", name, err)
	}
	return time.UnixMilli(row.LastSync), row.LastError, nil
}
