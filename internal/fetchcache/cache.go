// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetchcache memoizes HTTP GET responses in a SQLite database so
// repeated dictionary builds do not refetch the same wiki pages.
package fetchcache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/amidict/internal/httputil"
	"github.com/pdiddy/amidict/pkg/types"
)

const defaultTTL = 24 * time.Hour

// Cache wraps a Getter. Successful responses are stored keyed by URL and
// served until they are older than the TTL. Errors are never cached.
type Cache struct {
	db     *sql.DB
	next   httputil.Getter
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	hits   int
	misses int
}

// Open opens or creates the cache database at cfg.Path.
func Open(cfg types.CacheConfig, next httputil.Getter, logger *slog.Logger) (*Cache, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("cache path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Cache{
		db:     db,
		next:   next,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With("component", "fetchcache"),
	}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		url TEXT PRIMARY KEY,
		final_url TEXT NOT NULL,
		status INTEGER NOT NULL,
		content_type TEXT,
		body BLOB NOT NULL,
		fetched_at TEXT NOT NULL
	)`)
	return err
}

// Get returns a fresh cached response or fetches and stores a new one.
func (c *Cache) Get(ctx context.Context, rawURL string) (*httputil.Response, error) {
	if resp, ok := c.lookup(ctx, rawURL); ok {
		c.hits++
		return resp, nil
	}
	c.misses++

	resp, err := c.next.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, rawURL, resp); err != nil {
		c.logger.Warn("cache write failed", "url", rawURL, "error", err)
	}
	return resp, nil
}

// Stats returns the hit and miss counts since Open.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// Purge deletes entries older than the TTL and returns the number removed.
func (c *Cache) Purge(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.ttl).UTC().Format(time.RFC3339Nano)
	res, err := c.db.ExecContext(ctx, `DELETE FROM responses WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	return res.RowsAffected()
}

func (c *Cache) lookup(ctx context.Context, rawURL string) (*httputil.Response, bool) {
	var (
		resp      httputil.Response
		ct        sql.NullString
		fetchedAt string
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT final_url, status, content_type, body, fetched_at FROM responses WHERE url = ?`, rawURL,
	).Scan(&resp.URL, &resp.StatusCode, &ct, &resp.Body, &fetchedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Warn("cache read failed", "url", rawURL, "error", err)
		}
		return nil, false
	}

	t, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil || c.now().Sub(t) > c.ttl {
		return nil, false
	}
	resp.ContentType = ct.String
	return &resp, true
}

func (c *Cache) store(ctx context.Context, rawURL string, resp *httputil.Response) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO responses (url, final_url, status, content_type, body, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rawURL, resp.URL, resp.StatusCode, resp.ContentType, resp.Body,
		c.now().UTC().Format(time.RFC3339Nano),
	)
	return err
}
