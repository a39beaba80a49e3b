// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package quiz

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/pressroom-go/internal/model"
	"github.com/olegiv/pressroom-go/internal/notify"
)

// DefaultBadgeRankThreshold is the highest leaderboard rank that still
// earns the achievement notification.
const DefaultBadgeRankThreshold = 10

// BadgeEvaluator turns a fresh attempt's provisional rank into an
// achievement notification when it qualifies.
type BadgeEvaluator struct {
	notifier  *notify.Service
	logger    *slog.Logger
	threshold int
}

// NewBadgeEvaluator creates a BadgeEvaluator. A threshold of 0 or less
// falls back to DefaultBadgeRankThreshold.
func NewBadgeEvaluator(notifier *notify.Service, logger *slog.Logger, threshold int) *BadgeEvaluator {
	if threshold <= 0 {
		threshold = DefaultBadgeRankThreshold
	}
	return &BadgeEvaluator{
		notifier:  notifier,
		logger:    logger,
		threshold: threshold,
	}
}

// Evaluate notifies the user when their provisional rank is within the
// badge threshold. Evaluation never blocks or fails the attempt path:
// errors are logged and swallowed.
func (e *BadgeEvaluator) Evaluate(ctx context.Context, userID int64, rank int) {
	if rank < 1 || rank > e.threshold {
		return
	}

	title := fmt.Sprintf("Top %d finish!", e.threshold)
	message := fmt.Sprintf("Your quiz result placed you at rank %d.", rank)
	if _, err := e.notifier.Notify(ctx, userID, model.NotificationTypeAchievement, title, message, ""); err != nil {
		e.logger.Warn("achievement notification failed",
			"user_id", userID, "rank", rank, "error", err)
	}
}
