// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// stripPolicy removes every tag, leaving rendered text only.
var stripPolicy = bluemonday.StrictPolicy()

// WordsPerMinute is the assumed reading speed for reading-time estimates.
const WordsPerMinute = 200

// ExcerptLength is the target length, in runes, of article excerpts.
const ExcerptLength = 200

// PlainText strips all markup from an HTML fragment and unescapes
// entities, returning the rendered text with normalized whitespace.
func PlainText(htmlFragment string) string {
	text := stripPolicy.Sanitize(htmlFragment)
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// WordCount returns the number of whitespace-separated words in the
// rendered text of an HTML fragment.
func WordCount(htmlFragment string) int {
	return len(strings.Fields(PlainText(htmlFragment)))
}

// ReadingTime estimates reading time in whole minutes, rounding up and
// never reporting less than one minute.
func ReadingTime(wordCount int) int {
	minutes := (wordCount + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Excerpt returns roughly the first ExcerptLength runes of the rendered
// text, cut at a word boundary and ellipsized when truncated.
func Excerpt(htmlFragment string) string {
	text := PlainText(htmlFragment)
	runes := []rune(text)
	if len(runes) <= ExcerptLength {
		return text
	}

	cut := string(runes[:ExcerptLength])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
