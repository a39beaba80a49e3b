// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package aigen

import (
	"context"
	"strings"
	"testing"

	"github.com/olegiv/pressroom-go/internal/model"
)

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	svc := New("", "", nil)
	if svc != nil {
		t.Fatal("New with empty key should return nil")
	}
	if svc.Enabled() {
		t.Error("nil service should report disabled")
	}
}

func TestOrganizeContentDisabledReturnsOriginal(t *testing.T) {
	var svc *Service
	html := "<p>Original</p>"
	if got := svc.OrganizeContent(context.Background(), "Title", html); got != html {
		t.Errorf("OrganizeContent() = %q, want original", got)
	}
}

func TestGenerateQuizDisabled(t *testing.T) {
	var svc *Service
	if _, err := svc.GenerateQuiz(context.Background(), "Title", "<p>Body</p>"); err == nil {
		t.Error("disabled service should return an error")
	}
}

func TestParseQuestions(t *testing.T) {
	raw := `[
		{"question": "What is Go?", "options": ["Language", "Food", "City", "Animal"], "correct_answer": 0, "explanation": "It is a language."},
		{"question": "Too few options", "options": ["A", "B"], "correct_answer": 0},
		{"question": "Bad index", "options": ["A", "B", "C", "D"], "correct_answer": 7},
		{"question": "Valid", "options": ["A", "B", "C", "D"], "correct_answer": 3}
	]`

	questions, err := parseQuestions(raw)
	if err != nil {
		t.Fatalf("parseQuestions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("len(questions) = %d, want 2", len(questions))
	}
	if questions[0].Question != "What is Go?" {
		t.Errorf("first question = %q", questions[0].Question)
	}
	if questions[1].CorrectAnswer != 3 {
		t.Errorf("second correct answer = %d, want 3", questions[1].CorrectAnswer)
	}
}

func TestParseQuestionsCapsAtLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < model.MaxQuizQuestions+5; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"question": "Q", "options": ["A", "B", "C", "D"], "correct_answer": 1}`)
	}
	sb.WriteString("]")

	questions, err := parseQuestions(sb.String())
	if err != nil {
		t.Fatalf("parseQuestions: %v", err)
	}
	if len(questions) != model.MaxQuizQuestions {
		t.Errorf("len(questions) = %d, want %d", len(questions), model.MaxQuizQuestions)
	}
}

func TestParseQuestionsErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "here are your questions!"},
		{"empty array", "[]"},
		{"all invalid", `[{"question": "", "options": [], "correct_answer": 0}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseQuestions(tt.raw); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseQuestionsCodeFenced(t *testing.T) {
	raw := "```json\n[{\"question\": \"Q\", \"options\": [\"A\", \"B\", \"C\", \"D\"], \"correct_answer\": 0}]\n```"
	questions, err := parseQuestions(raw)
	if err != nil {
		t.Fatalf("parseQuestions: %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("len(questions) = %d, want 1", len(questions))
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "<p>hi</p>", "<p>hi</p>"},
		{"fenced html", "```html\n<p>hi</p>\n```", "<p>hi</p>"},
		{"fenced no tag", "```\n<p>hi</p>\n```", "<p>hi</p>"},
		{"fence with json on same line as content", "```{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}

	long := strings.Repeat("word ", 100)
	got := truncate(long, 52)
	if len(got) > 52 {
		t.Errorf("len = %d, want <= 52", len(got))
	}
	if !strings.HasSuffix(got, " ") {
		t.Errorf("truncate should cut on a word boundary, got %q", got)
	}
}
