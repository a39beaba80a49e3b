// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import "testing"

func TestSearchServiceEscapeQuery(t *testing.T) {
	svc := &SearchService{}

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "simple word",
			query: "hello",
			want:  `"hello"*`,
		},
		{
			name:  "two words joined with OR",
			query: "hello world",
			want:  `"hello"* OR "world"*`,
		},
		{
			name:  "strips FTS operators",
			query: `go "routines" AND (channels)`,
			want:  `"go"* OR "routines"* OR "AND"* OR "channels"*`,
		},
		{
			name:  "empty query",
			query: "",
			want:  "",
		},
		{
			name:  "only special chars",
			query: `"*:()`,
			want:  "",
		},
		{
			name:  "preserves cyrillic",
			query: "привет",
			want:  `"привет"*`,
		},
		{
			name:  "keeps hyphens and underscores",
			query: "go-lang snake_case",
			want:  `"go-lang"* OR "snake_case"*`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.escapeQuery(tt.query)
			if got != tt.want {
				t.Errorf("escapeQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "plain text",
			want:  "plain text",
		},
		{
			name:  "removes tags",
			input: "<p>hello <b>world</b></p>",
			want:  "hello world",
		},
		{
			name:  "unescapes entities",
			input: "a &amp; b",
			want:  "a & b",
		},
		{
			name:  "normalizes whitespace",
			input: "one\n\n  two\tthree",
			want:  "one two three",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripHTMLTags(tt.input)
			if got != tt.want {
				t.Errorf("stripHTMLTags(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeHighlight(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "keeps mark tags",
			input: "found <mark>term</mark> here",
			want:  "found <mark>term</mark> here",
		},
		{
			name:  "strips other tags",
			input: "<p>found <mark>term</mark> in <b>bold</b></p>",
			want:  "found <mark>term</mark> in bold",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeHighlight(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeHighlight(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
