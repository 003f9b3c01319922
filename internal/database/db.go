// Package database caches the last server feed snapshot so the
// dashboard still renders offline. Only server baselines are stored;
// engagement overlays are session-scoped and never persisted.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// New creates a new database connection and initializes schema
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	d := &DB{db}
	if err := d.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return d, nil
}

// initSchema creates database tables if they don't exist
func (db *DB) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS feed_items (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			author_id TEXT NOT NULL,
			author_name TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			category TEXT,
			location TEXT,
			timestamp_display TEXT,
			base_likes INTEGER NOT NULL DEFAULT 0,
			base_comments INTEGER NOT NULL DEFAULT 0,
			base_interest INTEGER NOT NULL DEFAULT 0,
			is_live INTEGER NOT NULL DEFAULT 0,
			is_pinned INTEGER NOT NULL DEFAULT 0,
			is_urgent INTEGER NOT NULL DEFAULT 0,
			is_admin_curated INTEGER NOT NULL DEFAULT 0,
			project_id TEXT,
			opportunity_id TEXT,
			campaign_id TEXT,
			metadata TEXT,
			position INTEGER NOT NULL,
			fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_feed_items_position ON feed_items(position);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
