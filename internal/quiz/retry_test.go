// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package quiz

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicySucceedsAfterTransientFailure(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 3,
		MinBackoff:  time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
	}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryPolicyStopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	policy := RetryPolicy{
		MaxAttempts: 5,
		MinBackoff:  time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("Do error = %v, want fatal", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryPolicyExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 2,
		MinBackoff:  time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
	}

	calls := 0
	wantErr := errors.New("still broken")
	err := policy.Do(context.Background(), func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Do error = %v, want %v", err, wantErr)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryPolicyHonorsContext(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 10,
		MinBackoff:  50 * time.Millisecond,
		MaxBackoff:  time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	boom := errors.New("boom")
	err := policy.Do(ctx, func() error {
		calls++
		cancel()
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Do error = %v, want boom", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
