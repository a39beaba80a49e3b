// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic retention jobs: old audit events, read
// notifications and stale empty drafts are swept on fixed cron schedules.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/pressroom-go/internal/store"
)

// Retention windows for the sweep jobs.
const (
	EventRetention        = 90 * 24 * time.Hour
	NotificationRetention = 30 * 24 * time.Hour
	EmptyDraftRetention   = 7 * 24 * time.Hour
)

// Scheduler handles periodic maintenance jobs.
type Scheduler struct {
	db     *sql.DB
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the retention jobs and begins the cron loop. Sweeps run
// nightly, staggered so they do not contend on the database.
func (s *Scheduler) Start() error {
	jobs := []struct {
		schedule string
		name     string
		run      func(context.Context, *store.Queries) error
	}{
		{"10 3 * * *", "events", s.sweepEvents},
		{"20 3 * * *", "notifications", s.sweepNotifications},
		{"30 3 * * *", "empty drafts", s.sweepEmptyDrafts},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.schedule, func() {
			ctx := context.Background()
			if err := job.run(ctx, store.New(s.db)); err != nil {
				s.logger.Error("retention job failed", "job", job.name, "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunRetentionNow triggers all sweeps immediately. Used at startup and by
// the admin surface.
func (s *Scheduler) RunRetentionNow(ctx context.Context) {
	queries := store.New(s.db)
	for _, job := range []struct {
		name string
		run  func(context.Context, *store.Queries) error
	}{
		{"events", s.sweepEvents},
		{"notifications", s.sweepNotifications},
		{"empty drafts", s.sweepEmptyDrafts},
	} {
		if err := job.run(ctx, queries); err != nil {
			s.logger.Error("retention job failed", "job", job.name, "error", err)
		}
	}
}

func (s *Scheduler) sweepEvents(ctx context.Context, queries *store.Queries) error {
	cutoff := time.Now().Add(-EventRetention)
	if err := queries.DeleteOldEvents(ctx, cutoff); err != nil {
		return err
	}
	s.logger.Info("swept old events", "cutoff", cutoff)
	return nil
}

func (s *Scheduler) sweepNotifications(ctx context.Context, queries *store.Queries) error {
	cutoff := time.Now().Add(-NotificationRetention)
	removed, err := queries.DeleteOldReadNotifications(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info("swept read notifications", "removed", removed, "cutoff", cutoff)
	}
	return nil
}

func (s *Scheduler) sweepEmptyDrafts(ctx context.Context, queries *store.Queries) error {
	cutoff := time.Now().Add(-EmptyDraftRetention)
	removed, err := queries.DeleteStaleEmptyDrafts(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Info("swept stale empty drafts", "removed", removed, "cutoff", cutoff)
	}
	return nil
}
