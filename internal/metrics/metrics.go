// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exposes Prometheus counters for the editorial and quiz
// pipelines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pressroom_review_transitions_total",
		Help: "Review gate transitions grouped by action and outcome.",
	}, []string{"action", "outcome"})

	quizAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pressroom_quiz_attempts_total",
		Help: "Quiz attempt submissions grouped by resolution.",
	}, []string{"resolution"})

	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pressroom_notifications_sent_total",
		Help: "Notifications created grouped by type.",
	}, []string{"type"})

	rateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pressroom_rate_limit_hits_total",
		Help: "Rate limiter activations grouped by limiter name.",
	}, []string{"limiter"})
)

// IncReview increments the review transition counter.
func IncReview(action, outcome string) {
	reviewTransitions.WithLabelValues(action, outcome).Inc()
}

// IncAttempt increments the quiz attempt counter. Resolutions are
// "created", "existing", "raced" and "degraded".
func IncAttempt(resolution string) {
	quizAttempts.WithLabelValues(resolution).Inc()
}

// IncNotification increments the notifications counter.
func IncNotification(typ string) {
	notificationsSent.WithLabelValues(typ).Inc()
}

// IncRateLimit increments the rate-limit hit counter.
func IncRateLimit(name string) {
	rateLimitHits.WithLabelValues(name).Inc()
}
