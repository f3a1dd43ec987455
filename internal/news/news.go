// Package news holds the candidate-entry shape shared by the acquisition
// channels and the relevance filter applied to it.
package news

import (
	"strings"
	"unicode"
)

// Candidate is a raw discovered item. It only lives in memory during one
// acquisition run; persisted records are built downstream.
type Candidate struct {
	Title     string
	Summary   string
	Link      string
	Published string
}

// Filter keeps candidates whose title+summary contains any keyword. Pure
// function; safe to reuse for post-hoc audits of the corpus.
func Filter(entries []Candidate, keywords []string) []Candidate {
	var filtered []Candidate
	for _, e := range entries {
		if Match(e.Title+" "+e.Summary, keywords) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Match reports whether text contains any keyword, case-insensitively.
// Short Latin keywords ("we", "fy", "egx") must sit on word boundaries so
// they don't fire inside unrelated words; phrases and Arabic keywords use
// plain substring matching.
func Match(text string, keywords []string) bool {
	lower := strings.ToLower(text)

	for _, k := range keywords {
		kw := strings.ToLower(strings.TrimSpace(k))
		if kw == "" {
			continue
		}

		if isShortLatinWord(kw) {
			if containsWord(lower, kw) {
				return true
			}
			continue
		}

		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isShortLatinWord(kw string) bool {
	if len(kw) > 4 || strings.ContainsRune(kw, ' ') {
		return false
	}
	for _, r := range kw {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// containsWord finds kw in text delimited by non-alphanumeric runes.
// Both text and kw are lowercase ASCII at this point.
func containsWord(text, kw string) bool {
	start := 0
	for {
		idx := strings.Index(text[start:], kw)
		if idx < 0 {
			return false
		}
		idx += start

		beforeOK := idx == 0 || !isWordByte(text[idx-1])
		after := idx + len(kw)
		afterOK := after >= len(text) || !isWordByte(text[after])

		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z'
}
