// Package textutil holds the pure text-shaping utilities shared by the
// vocabulary extractor, the task generators and the slice generator:
// tokenisation, sentence splitting and word-boundary matching. Everything here
// is deterministic and side-effect free.
package textutil

import (
	"strings"
	"unicode"
)

// MinTokenLength drops very short tokens before counting.
const MinTokenLength = 3

// Tokenize lowercases text and splits it into word tokens. Intra-word
// apostrophes survive ("don't"), all other punctuation separates tokens.
// Tokens shorter than MinTokenLength, all-digit tokens and stopwords are
// dropped.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)

	var tokens []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() == 0 {
			return
		}
		tok := strings.Trim(sb.String(), "'")
		sb.Reset()
		if !keepToken(tok) {
			return
		}
		tokens = append(tokens, tok)
	}

	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case r == '\'' || r == '’':
			sb.WriteRune('\'')
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// CountFrequencies tokenises text and returns per-token counts.
func CountFrequencies(text string) map[string]int {
	freq := make(map[string]int)
	for _, tok := range Tokenize(text) {
		freq[tok]++
	}
	return freq
}

// CountWords returns the number of whitespace-separated words. Used for slice
// budgets and book stats, where raw length matters more than lexical filtering.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ContainsWord reports whether word occurs in text on word boundaries,
// case-insensitively.
func ContainsWord(text, word string) bool {
	if word == "" {
		return false
	}
	lower := strings.ToLower(text)
	target := strings.ToLower(word)
	idx := 0
	for {
		pos := strings.Index(lower[idx:], target)
		if pos < 0 {
			return false
		}
		pos += idx
		before := pos == 0 || !isWordRune(rune(lower[pos-1]))
		afterPos := pos + len(target)
		after := afterPos >= len(lower) || !isWordRune(rune(lower[afterPos]))
		if before && after {
			return true
		}
		idx = pos + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\''
}

func keepToken(tok string) bool {
	if len(tok) < MinTokenLength {
		return false
	}
	allDigits := true
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return false
	}
	return !IsStopword(tok)
}
