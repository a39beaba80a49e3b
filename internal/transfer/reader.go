// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer imports articles from a legacy MySQL CMS into drafts.
package transfer

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// LegacyPost is one row of the legacy CMS posts table.
type LegacyPost struct {
	ID          int64
	Title       string
	Body        string
	AuthorEmail string
	AuthorName  string
	Tags        string // comma-separated in the legacy schema
	Status      string // "published" or "draft"
	Excerpt     sql.NullString
	CoverImage  sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reader reads posts from a legacy CMS MySQL database.
type Reader struct {
	db     *sql.DB
	prefix string // table prefix, e.g. "cms_"

	// Optional columns added in later legacy versions
	hasExcerpt     bool
	hasCoverImage  bool
	schemaDetected bool
}

// NewReader opens a connection to the legacy database and verifies it.
func NewReader(dsn, tablePrefix string) (*Reader, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening legacy database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to legacy database: %w", err)
	}
	return &Reader{db: db, prefix: tablePrefix}, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

// detectColumns checks which optional columns exist in the posts table.
func (r *Reader) detectColumns() error {
	if r.schemaDetected {
		return nil
	}

	rows, err := r.db.Query(`
		SELECT COLUMN_NAME
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		AND TABLE_NAME = ?`, r.prefix+"posts")
	if err != nil {
		return fmt.Errorf("querying column information: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scanning column name: %w", err)
		}
		switch name {
		case "excerpt":
			r.hasExcerpt = true
		case "cover_image":
			r.hasCoverImage = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}

	r.schemaDetected = true
	return nil
}

// CountPosts returns the number of rows in the legacy posts table.
func (r *Reader) CountPosts() (int64, error) {
	var n int64
	err := r.db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %sposts`, r.prefix)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting legacy posts: %w", err)
	}
	return n, nil
}

// ListPosts retrieves all posts from the legacy database, oldest first so
// imported drafts keep their relative order.
func (r *Reader) ListPosts() ([]LegacyPost, error) {
	if err := r.detectColumns(); err != nil {
		return nil, fmt.Errorf("detecting schema: %w", err)
	}

	cols := "id, title, body, author_email, author_name, tags, status, created_at, updated_at"
	if r.hasExcerpt {
		cols += ", excerpt"
	}
	if r.hasCoverImage {
		cols += ", cover_image"
	}

	rows, err := r.db.Query(fmt.Sprintf(`SELECT %s FROM %sposts ORDER BY created_at ASC`, cols, r.prefix))
	if err != nil {
		return nil, fmt.Errorf("querying legacy posts: %w", err)
	}
	defer rows.Close()

	var posts []LegacyPost
	for rows.Next() {
		var p LegacyPost
		dest := []any{
			&p.ID, &p.Title, &p.Body, &p.AuthorEmail, &p.AuthorName,
			&p.Tags, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		}
		if r.hasExcerpt {
			dest = append(dest, &p.Excerpt)
		}
		if r.hasCoverImage {
			dest = append(dest, &p.CoverImage)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning legacy post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating legacy posts: %w", err)
	}
	return posts, nil
}
