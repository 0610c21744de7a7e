package xsearch

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore persists pages to a single SQLite database, one row per
// page. It is an alternative to FileStore for long crawls where thousands
// of page files become unwieldy.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	query      TEXT    NOT NULL,
	fetched_at INTEGER NOT NULL,
	payload    BLOB    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pages_query ON pages(query);
`

// OpenSQLiteStore opens or creates search_results.db inside dir.
func OpenSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	dbPath := filepath.Join(dir, "search_results.db")

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports one writer; the paginators all funnel through it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// SavePage implements PageStore.
func (s *SQLiteStore) SavePage(ctx context.Context, query string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO pages (query, fetched_at, payload) VALUES (?, ?, ?)",
		query, time.Now().UnixNano(), payload)
	if err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}

// Pages returns the stored payloads for one query in insertion order.
func (s *SQLiteStore) Pages(ctx context.Context, query string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM pages WHERE query = ? ORDER BY id", query)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages [][]byte
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, payload)
	}
	return pages, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
