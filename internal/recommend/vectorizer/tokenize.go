// Reelmatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package vectorizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the shortest token kept, in runes.
const MinTokenLength = 2

// foldText decomposes text (NFKD), strips combining marks and lower-cases
// it, so "Amélie" and "AMELIE" produce the same token.
func foldText(text string) string {
	// transform.Chain keeps state and is not safe for concurrent use.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

// Tokenize splits text into normalised word tokens. Runs of letters and
// digits form tokens; everything else separates them. Tokens shorter than
// MinTokenLength and English stop words are dropped.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(foldText(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTokenLength || IsStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
