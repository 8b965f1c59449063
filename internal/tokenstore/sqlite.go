// Package tokenstore persists the hierarchy client's access token in SQLite so
// that separate CLI invocations share one token until it expires.
package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vaintrub/hierarchy-go/client"
)

const schema = `CREATE TABLE IF NOT EXISTS token_cache (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at INTEGER NOT NULL
)`

// SQLiteCache is a client.TokenCache backed by a SQLite file.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

var _ client.TokenCache = (*SQLiteCache)(nil)

// Open opens (creating if needed) the cache database at path.
// If path is ":memory:", uses an in-memory database.
// A nil clock defaults to time.Now.
func Open(path string, now func() time.Time) (*SQLiteCache, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening token cache: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token_cache table: %w", err)
	}

	if now == nil {
		now = time.Now
	}
	return &SQLiteCache{db: db, now: now}, nil
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Get returns the value for key if present and not expired. Expired rows are
// deleted on read.
func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM token_cache WHERE key = ?`, key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading token cache: %w", err)
	}

	if c.now().UnixMilli() >= expiresAt {
		if _, err := c.db.ExecContext(ctx,
			`DELETE FROM token_cache WHERE key = ? AND expires_at = ?`, key, expiresAt); err != nil {
			return "", false, fmt.Errorf("evicting expired token: %w", err)
		}
		return "", false, nil
	}
	return value, true, nil
}

// Set stores value under key for ttl. A ttl <= 0 removes the key.
func (c *SQLiteCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM token_cache WHERE key = ?`, key); err != nil {
			return fmt.Errorf("clearing token cache: %w", err)
		}
		return nil
	}

	expiresAt := c.now().Add(ttl).UnixMilli()
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO token_cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("writing token cache: %w", err)
	}
	return nil
}
