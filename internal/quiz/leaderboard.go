// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/pressroom-go/internal/cache"
	"github.com/olegiv/pressroom-go/internal/store"
)

// DefaultLeaderboardLimit caps how many entries a leaderboard returns
// when the caller does not ask for a specific size.
const DefaultLeaderboardLimit = 50

// leaderboardCacheTTL bounds staleness of a cached leaderboard. The
// ranker never invalidates on writes; entries simply age out.
const leaderboardCacheTTL = 30 * time.Second

// LeaderboardEntry is one ranked row, ready for display. Profile fields
// fall back to placeholders when the user row is missing.
type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	UserID           int64     `json:"user_id"`
	UserName         string    `json:"user_name"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"total_questions"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	CompletedAt      time.Time `json:"completed_at"`
}

// Ranker builds perfect-score leaderboards. Reading a leaderboard never
// writes: ranking is a pure projection over stored attempts.
type Ranker struct {
	queries *store.Queries
	cache   cache.Cacher
	logger  *slog.Logger
}

// NewRanker creates a Ranker. The cache may be nil, which disables
// caching entirely.
func NewRanker(db *sql.DB, c cache.Cacher, logger *slog.Logger) *Ranker {
	return &Ranker{
		queries: store.New(db),
		cache:   c,
		logger:  logger,
	}
}

// Leaderboard returns the top perfect attempts for a quiz, ranked by
// fastest completion with earlier submissions breaking exact ties.
// Ranks are sequential starting at 1. A quiz with no perfect attempts
// yields an empty slice, not an error.
func (r *Ranker) Leaderboard(ctx context.Context, quizID int64, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > DefaultLeaderboardLimit {
		limit = DefaultLeaderboardLimit
	}

	key := fmt.Sprintf("leaderboard:%d:%d", quizID, limit)
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, key); err == nil {
			var entries []LeaderboardEntry
			if err := json.Unmarshal(raw, &entries); err == nil {
				return entries, nil
			}
			r.logger.Warn("discarding undecodable cached leaderboard", "key", key)
		}
	}

	attempts, err := r.queries.ListPerfectAttemptsForQuiz(ctx, store.ListPerfectAttemptsForQuizParams{
		QuizID: quizID,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("listing perfect attempts: %w", err)
	}

	entries := r.assemble(ctx, attempts)

	if r.cache != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := r.cache.Set(ctx, key, raw, leaderboardCacheTTL); err != nil {
				r.logger.Warn("leaderboard cache write failed", "key", key, "error", err)
			}
		}
	}
	return entries, nil
}

// assemble joins attempts with user profiles and assigns ranks. Missing
// profiles get a placeholder name so a deleted user never breaks the
// board.
func (r *Ranker) assemble(ctx context.Context, attempts []store.QuizAttempt) []LeaderboardEntry {
	ids := make([]int64, 0, len(attempts))
	for _, a := range attempts {
		ids = append(ids, a.UserID)
	}

	users, err := r.queries.GetUsersByIDs(ctx, ids)
	if err != nil {
		r.logger.Warn("leaderboard profile lookup failed, using placeholders", "error", err)
		users = nil
	}

	entries := make([]LeaderboardEntry, 0, len(attempts))
	for i, a := range attempts {
		entry := LeaderboardEntry{
			Rank:             i + 1,
			UserID:           a.UserID,
			UserName:         "Anonymous",
			Score:            int(a.Score),
			TotalQuestions:   int(a.TotalQuestions),
			TimeSpentSeconds: int(a.TimeSpent),
			CompletedAt:      a.CompletedAt,
		}
		if u, ok := users[a.UserID]; ok {
			entry.UserName = u.Name
			entry.AvatarURL = u.AvatarUrl
		}
		entries = append(entries, entry)
	}
	return entries
}
