// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/pressroom-go/internal/auth"
	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/service"
	"github.com/olegiv/pressroom-go/internal/store"
)

// Options configure one import run.
type Options struct {
	// DSN is the MySQL connection string for the legacy database.
	DSN string

	// TablePrefix is prepended to legacy table names, e.g. "cms_".
	TablePrefix string

	// FallbackEmail receives posts whose author has no email in the
	// legacy data.
	FallbackEmail string

	// DryRun reads and converts without writing drafts.
	DryRun bool
}

// Result summarizes an import run.
type Result struct {
	Total    int
	Imported int
	Skipped  int
	Failed   int
}

// Importer pulls legacy posts into the drafts table. Every imported post
// lands as a draft regardless of its legacy status; publication goes
// through the normal review gate.
type Importer struct {
	queries *store.Queries
	events  *service.EventService
	logger  *slog.Logger

	// userCache maps legacy author emails to local user IDs.
	userCache map[string]int64
}

// NewImporter creates an Importer.
func NewImporter(db *sql.DB, events *service.EventService, logger *slog.Logger) *Importer {
	return &Importer{
		queries:   store.New(db),
		events:    events,
		logger:    logger,
		userCache: make(map[string]int64),
	}
}

// Run imports all legacy posts. Individual post failures are counted and
// logged but do not abort the run.
func (im *Importer) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.FallbackEmail == "" {
		opts.FallbackEmail = "imported@localhost"
	}

	reader, err := NewReader(opts.DSN, opts.TablePrefix)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	posts, err := reader.ListPosts()
	if err != nil {
		return nil, err
	}

	result := &Result{Total: len(posts)}
	for _, post := range posts {
		if strings.TrimSpace(post.Title) == "" && strings.TrimSpace(post.Body) == "" {
			result.Skipped++
			continue
		}

		if opts.DryRun {
			result.Imported++
			continue
		}

		if err := im.importPost(ctx, post, opts.FallbackEmail); err != nil {
			result.Failed++
			im.logger.Warn("legacy post import failed",
				"legacy_id", post.ID, "title", post.Title, "error", err)
			continue
		}
		result.Imported++
	}

	im.logger.Info("legacy import finished",
		"total", result.Total,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	if im.events != nil {
		_ = im.events.LogTransferEvent(ctx, model.EventLevelInfo,
			fmt.Sprintf("Imported %d of %d legacy posts", result.Imported, result.Total),
			nil, "", map[string]any{
				"skipped": result.Skipped,
				"failed":  result.Failed,
			})
	}
	return result, nil
}

// importPost converts one legacy post and writes it as a draft.
func (im *Importer) importPost(ctx context.Context, post LegacyPost, fallbackEmail string) error {
	userID, err := im.resolveAuthor(ctx, post, fallbackEmail)
	if err != nil {
		return fmt.Errorf("resolving author: %w", err)
	}

	_, err = im.queries.CreateDraft(ctx, draftParams(post, userID))
	if err != nil {
		return fmt.Errorf("creating draft: %w", err)
	}
	return nil
}

// resolveAuthor finds or creates the local user owning the imported draft.
// Created accounts get an unguessable password; owners reset it out of band.
func (im *Importer) resolveAuthor(ctx context.Context, post LegacyPost, fallbackEmail string) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(post.AuthorEmail))
	if email == "" {
		email = fallbackEmail
	}

	if id, ok := im.userCache[email]; ok {
		return id, nil
	}

	row, err := im.queries.GetUserByEmail(ctx, email)
	if err == nil {
		im.userCache[email] = row.ID
		return row.ID, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	name := strings.TrimSpace(post.AuthorName)
	if name == "" {
		name = email
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return 0, fmt.Errorf("generating password: %w", err)
	}
	hash, err := auth.HashPassword(hex.EncodeToString(secret))
	if err != nil {
		return 0, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	created, err := im.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         model.RoleAuthor,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return 0, err
	}

	im.logger.Info("created account for legacy author", "email", email, "user_id", created.ID)
	im.userCache[email] = created.ID
	return created.ID, nil
}

// draftParams maps a legacy post onto draft fields. Legacy slugs are
// dropped: new slugs are generated at approval time.
func draftParams(post LegacyPost, userID int64) store.CreateDraftParams {
	createdAt := post.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := post.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	return store.CreateDraftParams{
		UserID:        userID,
		Title:         strings.TrimSpace(post.Title),
		ContentHtml:   post.Body,
		ContentFormat: model.ContentFormatHTML,
		CoverImageUrl: post.CoverImage.String,
		Tags:          convertTags(post.Tags),
		QuizQuestions: "",
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
}

// convertTags turns the legacy comma-separated tag list into the JSON
// array format drafts use. Duplicates and blanks are removed, case
// preserved from first occurrence.
func convertTags(raw string) string {
	seen := make(map[string]bool)
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(b)
}
