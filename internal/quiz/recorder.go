// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package quiz implements the quiz attempt recorder, the perfect-score
// leaderboard ranker and the badge evaluator.
package quiz

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/pressroom-go/internal/metrics"
	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/store"
)

// DefaultAttemptTimeout bounds how long a submission waits on storage
// before degrading to a synthesized local result.
const DefaultAttemptTimeout = 5 * time.Second

// Recorder records quiz attempts idempotently per (quiz, user).
type Recorder struct {
	queries *store.Queries
	logger  *slog.Logger
	badges  *BadgeEvaluator
	policy  RetryPolicy
	timeout time.Duration
}

// RecorderConfig holds optional Recorder settings.
type RecorderConfig struct {
	Policy  RetryPolicy
	Timeout time.Duration
}

// NewRecorder creates a Recorder. The badge evaluator may be nil.
func NewRecorder(db *sql.DB, badges *BadgeEvaluator, logger *slog.Logger, cfg RecorderConfig) *Recorder {
	policy := cfg.Policy
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}
	if policy.Retryable == nil {
		// Unique violations and dead contexts never succeed on retry
		policy.Retryable = func(err error) bool {
			return !store.IsUniqueViolation(err) &&
				!errors.Is(err, context.DeadlineExceeded) &&
				!errors.Is(err, context.Canceled)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	return &Recorder{
		queries: store.New(db),
		logger:  logger,
		badges:  badges,
		policy:  policy,
		timeout: timeout,
	}
}

// SubmitInput holds one completed quiz run.
type SubmitInput struct {
	QuizID           int64
	UserID           int64
	Score            int
	TotalQuestions   int
	TimeSpentSeconds int
}

// SubmitAttempt records an attempt, idempotently per (quiz, user):
//
//  1. An existing attempt is returned unchanged; a prior result is never
//     overwritten.
//  2. Otherwise a full attempt row is inserted.
//  3. A uniqueness violation means a concurrent submission won the race;
//     the winning row is fetched and returned.
//  4. Any other storage failure is retried once with the reduced
//     mandatory field set.
//  5. If storage stays unavailable past the deadline, a synthesized
//     local- result is returned so the caller's flow can proceed. That
//     result is not durable.
//
// Only a successful, newly created attempt triggers rank computation and
// badge evaluation; the idempotent paths never do.
func (r *Recorder) SubmitAttempt(ctx context.Context, in SubmitInput) (*model.QuizAttempt, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	existing, err := r.queries.GetAttempt(ctx, store.GetAttemptParams{
		QuizID: in.QuizID,
		UserID: in.UserID,
	})
	if err == nil {
		metrics.IncAttempt("existing")
		return attemptFromStore(existing), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		// Lookup failed for storage reasons; the insert below still
		// resolves duplicates through the unique constraint
		r.logger.Warn("attempt lookup failed, proceeding to insert",
			"quiz_id", in.QuizID, "user_id", in.UserID, "error", err)
	}

	now := time.Now().UTC()

	var created store.QuizAttempt
	insertErr := r.policy.Do(ctx, func() error {
		var err error
		created, err = r.queries.CreateAttempt(ctx, store.CreateAttemptParams{
			ID:             uuid.NewString(),
			QuizID:         in.QuizID,
			UserID:         in.UserID,
			Score:          int64(in.Score),
			TotalQuestions: int64(in.TotalQuestions),
			TimeSpent:      int64(in.TimeSpentSeconds),
			CompletedAt:    now,
		})
		return err
	})
	if insertErr == nil {
		r.afterCreate(ctx, created)
		metrics.IncAttempt("created")
		return attemptFromStore(created), nil
	}

	if store.IsUniqueViolation(insertErr) {
		winner, err := r.queries.GetAttempt(ctx, store.GetAttemptParams{
			QuizID: in.QuizID,
			UserID: in.UserID,
		})
		if err == nil {
			metrics.IncAttempt("raced")
			return attemptFromStore(winner), nil
		}
		r.logger.Error("lost submission race but winner row unavailable",
			"quiz_id", in.QuizID, "user_id", in.UserID, "error", err)
		return r.degrade(in, now), nil
	}

	r.logger.Warn("full attempt insert failed, retrying with reduced fields",
		"quiz_id", in.QuizID, "user_id", in.UserID, "error", insertErr)

	created, err = r.queries.CreateAttemptMinimal(ctx, store.CreateAttemptMinimalParams{
		ID:          uuid.NewString(),
		QuizID:      in.QuizID,
		UserID:      in.UserID,
		Score:       int64(in.Score),
		CompletedAt: now,
	})
	if err == nil {
		r.afterCreate(ctx, created)
		metrics.IncAttempt("created")
		return attemptFromStore(created), nil
	}
	if store.IsUniqueViolation(err) {
		if winner, ferr := r.queries.GetAttempt(ctx, store.GetAttemptParams{
			QuizID: in.QuizID,
			UserID: in.UserID,
		}); ferr == nil {
			metrics.IncAttempt("raced")
			return attemptFromStore(winner), nil
		}
	}

	r.logger.Error("attempt persistence exhausted, returning local result",
		"quiz_id", in.QuizID, "user_id", in.UserID, "error", err)
	metrics.IncAttempt("degraded")
	return r.degrade(in, now), nil
}

// afterCreate computes the provisional rank of a freshly stored attempt
// and hands it to the badge evaluator. Failures never surface.
func (r *Recorder) afterCreate(ctx context.Context, created store.QuizAttempt) {
	if r.badges == nil {
		return
	}

	count, err := r.queries.CountAttemptsAtOrAbove(ctx, store.CountAttemptsAtOrAboveParams{
		QuizID:    created.QuizID,
		Score:     created.Score,
		TimeSpent: created.TimeSpent,
	})
	if err != nil {
		r.logger.Warn("provisional rank computation failed",
			"quiz_id", created.QuizID, "user_id", created.UserID, "error", err)
		return
	}

	// The count includes the attempt just stored, so it is the rank
	r.badges.Evaluate(ctx, created.UserID, int(count))
}

// degrade synthesizes a non-persisted attempt result. Its id prefix marks
// it as local; callers must not treat it as durable.
func (r *Recorder) degrade(in SubmitInput, completedAt time.Time) *model.QuizAttempt {
	return &model.QuizAttempt{
		ID:               model.LocalAttemptIDPrefix + uuid.NewString(),
		QuizID:           in.QuizID,
		UserID:           in.UserID,
		Score:            in.Score,
		TotalQuestions:   in.TotalQuestions,
		TimeSpentSeconds: in.TimeSpentSeconds,
		CompletedAt:      completedAt,
	}
}

func attemptFromStore(row store.QuizAttempt) *model.QuizAttempt {
	return &model.QuizAttempt{
		ID:               row.ID,
		QuizID:           row.QuizID,
		UserID:           row.UserID,
		Score:            int(row.Score),
		TotalQuestions:   int(row.TotalQuestions),
		TimeSpentSeconds: int(row.TimeSpent),
		CompletedAt:      row.CompletedAt,
	}
}
