// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// User roles
const (
	RoleAuthor = "author"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// User is a minimal account record backing authorship, review rights and
// the leaderboard profile join.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanReview returns true for roles allowed to approve or reject drafts.
func (u *User) CanReview() bool {
	return u.Role == RoleEditor || u.Role == RoleAdmin
}

// CanOverrideAuthor returns true for roles allowed to set a custom
// author display name on a draft.
func (u *User) CanOverrideAuthor() bool {
	return u.Role == RoleEditor || u.Role == RoleAdmin
}
