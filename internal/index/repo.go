package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	Path      string    `json:"path"`
	File      string    `json:"file"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertPage inserts or replaces a page and its FTS entry within a transaction.
func (db *DB) UpsertPage(p PageRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO pages (path, file, title, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			file       = excluded.file,
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, p.Path, p.File, p.Title, p.Checksum, body, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert page: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, p.Path, p.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePage removes a page and its FTS entry.
func (db *DB) DeletePage(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	if _, err := tx.Exec(`DELETE FROM pages WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete page: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a page, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM pages WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns the checksum of every indexed page keyed by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListPages returns pages ordered by path together with the total count.
// A non-positive limit returns every page.
func (db *DB) ListPages(limit, offset int) ([]PageRow, int, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count pages: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT path, file, title, checksum, updated_at
		FROM pages
		ORDER BY path
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list pages: %w", err)
	}
	defer rows.Close()

	out := []PageRow{}
	for rows.Next() {
		var p PageRow
		if err := rows.Scan(&p.Path, &p.File, &p.Title, &p.Checksum, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}
