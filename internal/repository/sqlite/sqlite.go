package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Houeta/deal-watch/internal/repository"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// Repository represents a data repository that interacts with the database
// and provides logging capabilities. It holds a reference to the database
// and a logger instance for logging operations.
type Repository struct {
	db  *sql.DB
	log *slog.Logger
}

var _ repository.Storage = (*Repository)(nil)

// NewRepository opens (or creates) the SQLite database at storagePath and migrates its schema.
func NewRepository(ctx context.Context, log *slog.Logger, storagePath string) (*Repository, error) {
	// Open (or create if it doesn't exist) the database file.
	dtb, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", storagePath))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// A single connection keeps snapshot replacement and reads strictly ordered.
	dtb.SetMaxOpenConns(1)

	// Check if the connection is actually established.
	if err = dtb.PingContext(ctx); err != nil {
		dtb.Close()
		return nil, fmt.Errorf("unable to establish connection to database: %w", err)
	}

	// Perform the initial schema migration.
	if err = initSchema(ctx, dtb); err != nil {
		dtb.Close()
		return nil, fmt.Errorf("DB schema initialization error: %w", err)
	}

	return &Repository{db: dtb, log: log}, nil
}

// initSchema creates the necessary tables if they don't already exist.
func initSchema(ctx context.Context, dtb *sql.DB) error {
	const migrationQuery = `
	CREATE TABLE IF NOT EXISTS snapshots (
		term TEXT PRIMARY KEY NOT NULL,
		page_hash TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS listings (
		term TEXT NOT NULL,
		position INTEGER NOT NULL,
		listing_url TEXT NOT NULL,
		title TEXT NOT NULL,
		price REAL NOT NULL,
		stricken_price REAL,
		seller_url TEXT NOT NULL,
		age TEXT NOT NULL,
		age_hours REAL NOT NULL,
		is_bumped INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (term, position)
	);

	CREATE TABLE IF NOT EXISTS monitored_searches (
		owner_id TEXT NOT NULL,
		search_term TEXT NOT NULL,
		min_price REAL,
		max_price REAL,
		exclude TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (owner_id, search_term)
	);

	CREATE INDEX IF NOT EXISTS idx_monitored_searches_term ON monitored_searches(search_term);

	CREATE TABLE IF NOT EXISTS notified (
		owner_id TEXT NOT NULL,
		search_term TEXT NOT NULL,
		listing_url TEXT NOT NULL,
		notified_at TIMESTAMP NOT NULL,
		PRIMARY KEY (owner_id, search_term, listing_url)
	);

	CREATE INDEX IF NOT EXISTS idx_notified_at ON notified(notified_at);
	`
	_, err := dtb.ExecContext(ctx, migrationQuery)
	if err != nil {
		return fmt.Errorf("failed to execute migration query: %w", err)
	}

	return nil
}

// Close closes the connection to the database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.Error("failed to close the database", "op", "repository.sqlite.Close", "error", err)
		return fmt.Errorf("failed to close the database: %w", err)
	}

	return nil
}

// DB is a getter for database handler.
func (r *Repository) DB() *sql.DB {
	return r.db
}
