// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog maintains a SQLite inventory of fetched records for
// reporting. The file store stays authoritative; the catalog only backs
// the status command, so catalog failures are logged, never fatal.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

const dbFile = "catalog.db"

// Catalog wraps the inventory database.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog database under dataDir.
func Open(dataDir string) (*Catalog, error) {
	path := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		title TEXT,
		journal TEXT,
		year TEXT,
		fetched_at TEXT
	)`)
	return err
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// publicationYear pulls the four-digit year out of PubMed's free-form
// date strings ("2013 Jan", "2024 Mar 15", "Winter 2019").
func publicationYear(date string) string {
	if m := yearPattern.FindStringSubmatch(date); m != nil {
		return m[1]
	}
	return ""
}

// Upsert records one fetched article, replacing any previous row for
// the same PMID.
func (c *Catalog) Upsert(ctx context.Context, a *types.Article) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO articles (id, title, journal, year, fetched_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   journal = excluded.journal,
		   year = excluded.year,
		   fetched_at = excluded.fetched_at`,
		a.ID, a.Title, a.Journal, publicationYear(a.PublicationDate),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting article %s: %w", a.ID, err)
	}
	return nil
}

// Count returns the number of cataloged articles.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

// GroupCount is one row of a grouped inventory breakdown.
type GroupCount struct {
	Key   string
	Count int
}

// ByJournal returns the most frequent journals, descending.
func (c *Catalog) ByJournal(ctx context.Context, limit int) ([]GroupCount, error) {
	if limit <= 0 {
		limit = 10
	}
	return c.grouped(ctx,
		`SELECT journal, COUNT(*) AS n FROM articles
		 WHERE journal != '' GROUP BY journal ORDER BY n DESC, journal LIMIT ?`, limit)
}

// ByYear returns article counts per publication year, ascending.
func (c *Catalog) ByYear(ctx context.Context) ([]GroupCount, error) {
	return c.grouped(ctx,
		`SELECT year, COUNT(*) FROM articles
		 WHERE year != '' GROUP BY year ORDER BY year`)
}

func (c *Catalog) grouped(ctx context.Context, query string, args ...any) ([]GroupCount, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var out []GroupCount
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
