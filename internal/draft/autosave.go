// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package draft

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/pressroom-go/internal/model"
)

// pendingSave is the most recent queued edit for one draft.
type pendingSave struct {
	editor *model.User
	input  UpdateInput
}

// Autosaver coalesces rapid draft edits and writes them on a fixed
// interval. Concurrent autosave and explicit save against the same draft
// are last-write-wins at the row level; no merge logic exists.
type Autosaver struct {
	svc      *Service
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	pending map[int64]pendingSave

	done chan struct{}
	wg   sync.WaitGroup
}

// NewAutosaver creates an Autosaver flushing on the given interval.
func NewAutosaver(svc *Service, logger *slog.Logger, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Autosaver{
		svc:      svc,
		logger:   logger,
		interval: interval,
		pending:  make(map[int64]pendingSave),
		done:     make(chan struct{}),
	}
}

// Queue records an edit for the next flush, replacing any edit already
// queued for the same draft.
func (a *Autosaver) Queue(draftID int64, editor *model.User, in UpdateInput) {
	a.mu.Lock()
	a.pending[draftID] = pendingSave{editor: editor, input: in}
	a.mu.Unlock()
}

// Start begins the background flush loop.
func (a *Autosaver) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				a.Flush(context.Background())
			case <-a.done:
				// Final flush so queued edits are not lost on shutdown
				a.Flush(context.Background())
				return
			}
		}
	}()
}

// Stop flushes pending edits and stops the loop.
func (a *Autosaver) Stop() {
	close(a.done)
	a.wg.Wait()
}

// Flush writes all queued edits. Failures are logged and dropped; the
// author's editor still holds the local state and will queue again.
func (a *Autosaver) Flush(ctx context.Context) {
	a.mu.Lock()
	batch := a.pending
	a.pending = make(map[int64]pendingSave)
	a.mu.Unlock()

	for draftID, save := range batch {
		if _, err := a.svc.Update(ctx, draftID, save.editor, save.input); err != nil {
			a.logger.Warn("autosave failed", "draft_id", draftID, "error", err)
		}
	}
}
