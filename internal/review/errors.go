// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package review

import "fmt"

// ValidationError reports a draft that fails the submit or approve
// checks. It reaches the caller synchronously and implies no write
// happened.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// TransitionError reports an action applied to a draft in the wrong
// state, e.g. approving a draft that was never submitted.
type TransitionError struct {
	DraftID int64
	Status  string
	Action  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s draft %d in status %q", e.Action, e.DraftID, e.Status)
}
