// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package aigen provides AI-assisted draft tooling: cleaning up article
// HTML and generating candidate quiz questions from article content.
// All calls are best-effort; callers must tolerate failures.
package aigen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/olegiv/pressroom-go/internal/model"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = openai.ChatModelGPT4oMini

	// requestTimeout bounds a single remote call.
	requestTimeout = 60 * time.Second

	// maxContentChars caps how much article text goes into a prompt.
	maxContentChars = 24_000
)

const organizeSystemPrompt = `You are an editorial assistant. Clean up the given article HTML:
fix heading hierarchy, split walls of text into paragraphs, keep all
facts and links intact. Return only the cleaned HTML, no commentary.`

const quizSystemPrompt = `You are an editorial assistant. Write multiple-choice quiz questions
about the given article. Respond with a JSON array only, no commentary.
Each element: {"question": string, "options": [4 strings],
"correct_answer": int (0-3), "explanation": string}.`

// Service is the remote generation client. A nil Service is valid and
// reports itself as disabled.
type Service struct {
	client openai.Client
	model  string
	logger *slog.Logger
}

// New creates a Service. Returns nil when apiKey is empty, which
// callers treat as the feature being switched off.
func New(apiKey, modelName string, logger *slog.Logger) *Service {
	if apiKey == "" {
		return nil
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  modelName,
		logger: logger,
	}
}

// Enabled reports whether remote generation is available.
func (s *Service) Enabled() bool {
	return s != nil
}

// OrganizeContent asks the model to restructure article HTML. On any
// failure the original HTML is returned unchanged so the editor flow
// never breaks.
func (s *Service) OrganizeContent(ctx context.Context, title, html string) string {
	if !s.Enabled() || strings.TrimSpace(html) == "" {
		return html
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	out, err := s.complete(ctx, organizeSystemPrompt,
		fmt.Sprintf("Title: %s\n\n%s", title, truncate(html, maxContentChars)))
	if err != nil {
		s.logger.Warn("content organization failed, keeping original",
			"title", title, "error", err)
		return html
	}

	cleaned := stripCodeFence(out)
	if strings.TrimSpace(cleaned) == "" {
		return html
	}
	return cleaned
}

// GenerateQuiz asks the model for candidate quiz questions about the
// article. Invalid questions are dropped; the list is capped at
// model.MaxQuizQuestions. Returns an error when nothing usable came back.
func (s *Service) GenerateQuiz(ctx context.Context, title, html string) ([]model.QuizQuestion, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("quiz generation is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	out, err := s.complete(ctx, quizSystemPrompt,
		fmt.Sprintf("Title: %s\n\n%s", title, truncate(html, maxContentChars)))
	if err != nil {
		return nil, fmt.Errorf("quiz generation: %w", err)
	}

	questions, err := parseQuestions(out)
	if err != nil {
		return nil, fmt.Errorf("quiz generation: %w", err)
	}
	return questions, nil
}

// complete performs a single chat completion and returns the text of the
// first choice.
func (s *Service) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// parseQuestions decodes the model's JSON array and keeps only questions
// that pass validation.
func parseQuestions(raw string) ([]model.QuizQuestion, error) {
	raw = stripCodeFence(raw)

	var candidates []model.QuizQuestion
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}

	out := make([]model.QuizQuestion, 0, len(candidates))
	for _, q := range candidates {
		if q.Validate() != nil {
			continue
		}
		out = append(out, q)
		if len(out) == model.MaxQuizQuestions {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid questions in response")
	}
	return out, nil
}

// stripCodeFence removes a surrounding markdown code fence, which models
// add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" or "html" on the opening fence
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, " \t{<[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := s[:n]
	for len(cut) > 0 && !strings.HasSuffix(cut, " ") {
		// Walk back to avoid splitting a rune or a word
		cut = cut[:len(cut)-1]
	}
	if cut == "" {
		return s[:n]
	}
	return cut
}
