package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xxxsen/common/database"
	"github.com/xxxsen/common/database/sqlite"
)

var defaultDB database.IDatabase

const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS play_history_tab (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id VARCHAR(36) NOT NULL,
	rom_path VARCHAR(1024) NOT NULL,
	system_name VARCHAR(128) NOT NULL,
	game_name VARCHAR(256) NOT NULL,
	play_count INTEGER NOT NULL,
	played_at BIGINT NOT NULL
);`

	createIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_play_history_tab_played_at
ON play_history_tab(played_at);`
)

// SetDefault assigns the global database instance.
func SetDefault(db database.IDatabase) {
	defaultDB = db
}

// Default returns the configured global database instance.
func Default() database.IDatabase {
	return defaultDB
}

// Open opens the sqlite file at path, creating it and its schema when needed.
func Open(ctx context.Context, path string) (database.IDatabase, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sqlite.New(path, func(db database.IDatabase) error {
		return EnsureSchema(ctx, db)
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

// EnsureSchema initialises required tables and indexes.
func EnsureSchema(ctx context.Context, db database.IExecer) error {
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, createIndexSQL); err != nil {
		return err
	}
	return nil
}
