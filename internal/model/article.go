// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Article statuses
const (
	ArticleStatusPublished = "published"
)

// Article is the published, publicly readable artifact. It is created
// exactly once, from a draft, at approval time and shares the draft's id.
type Article struct {
	ID            int64     `json:"id"`
	Slug          string    `json:"slug"`
	AuthorID      int64     `json:"author_id"`
	Title         string    `json:"title"`
	ContentHtml   string    `json:"content_html"`
	Excerpt       string    `json:"excerpt"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	Tags          []string  `json:"tags"`
	CustomAuthor  *string   `json:"custom_author,omitempty"`
	Status        string    `json:"status"`
	Likes         int64     `json:"likes"`
	Featured      bool      `json:"featured"`
	PublishedAt   time.Time `json:"published_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
