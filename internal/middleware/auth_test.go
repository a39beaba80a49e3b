// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/pressroom-go/internal/model"
)

func requestWithUser(user *model.User) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if user == nil {
		return r
	}
	ctx := context.WithValue(r.Context(), ContextKeyUser, user)
	return r.WithContext(ctx)
}

func TestGetUser(t *testing.T) {
	if got := GetUser(requestWithUser(nil)); got != nil {
		t.Errorf("GetUser() = %v, want nil", got)
	}

	user := &model.User{ID: 7, Email: "editor@example.com", Role: model.RoleEditor}
	if got := GetUser(requestWithUser(user)); got != user {
		t.Errorf("GetUser() = %v, want %v", got, user)
	}
}

func TestGetUserID(t *testing.T) {
	if got := GetUserID(requestWithUser(nil)); got != 0 {
		t.Errorf("GetUserID() = %d, want 0", got)
	}
	if got := GetUserID(requestWithUser(&model.User{ID: 42})); got != 42 {
		t.Errorf("GetUserID() = %d, want 42", got)
	}
}

func TestGetUserIDPtr(t *testing.T) {
	if got := GetUserIDPtr(requestWithUser(nil)); got != nil {
		t.Errorf("GetUserIDPtr() = %v, want nil", got)
	}
	got := GetUserIDPtr(requestWithUser(&model.User{ID: 42}))
	if got == nil || *got != 42 {
		t.Errorf("GetUserIDPtr() = %v, want 42", got)
	}
}

func TestRequireUser(t *testing.T) {
	handler := RequireUser()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithUser(nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithUser(&model.User{ID: 1, Role: model.RoleAuthor}))
	if rr.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", rr.Code)
	}
}

func TestRoleLevel(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{model.RoleAdmin, 3},
		{model.RoleEditor, 2},
		{model.RoleAuthor, 1},
		{"", 0},
		{"unknown", 0},
	}
	for _, tt := range tests {
		if got := roleLevel(tt.role); got != tt.want {
			t.Errorf("roleLevel(%q) = %d, want %d", tt.role, got, tt.want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(model.RoleEditor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		user *model.User
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"author", &model.User{ID: 1, Role: model.RoleAuthor}, http.StatusForbidden},
		{"editor", &model.User{ID: 2, Role: model.RoleEditor}, http.StatusOK},
		{"admin", &model.User{ID: 3, Role: model.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, requestWithUser(tt.user))
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithUser(&model.User{ID: 2, Role: model.RoleEditor}))
	if rr.Code != http.StatusForbidden {
		t.Errorf("editor status = %d, want 403", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithUser(&model.User{ID: 3, Role: model.RoleAdmin}))
	if rr.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rr.Code)
	}
}

func TestRequestPath(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, GetRequestPath(r.Context()))
	})

	wrapped := RequestPath(handler)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/drafts", nil))

	if body := rr.Body.String(); body != "/api/drafts" {
		t.Errorf("GetRequestPath() = %q, want %q", body, "/api/drafts")
	}
}

func TestGetRequestPathMissing(t *testing.T) {
	if path := GetRequestPath(context.Background()); path != "" {
		t.Errorf("GetRequestPath() = %q, want empty", path)
	}
}
