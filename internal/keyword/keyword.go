// Package keyword matches user messages against small keyword vocabularies.
//
// Matching works on whole words so that short keywords do not fire inside
// longer words ("hi" does not match "his"). A keyword ending in '*' matches any
// word starting with the stem ("skill*" matches "skills"), and a keyword made
// of several words matches those words appearing consecutively.
package keyword

import (
	"strings"
	"unicode"
)

// Set is a list of keywords or phrases. The zero value matches nothing.
type Set []string

// Words lower-cases text and splits it into letter/digit runs.
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Match reports whether any keyword of s occurs in text.
func (s Set) Match(text string) bool {
	return s.MatchWords(Words(text))
}

// MatchWords is Match over pre-split words, for callers testing several sets
// against the same message.
func (s Set) MatchWords(words []string) bool {
	for _, kw := range s {
		if phraseIn(Words(kw), strings.HasSuffix(kw, "*"), words) {
			return true
		}
	}
	return false
}

func phraseIn(phrase []string, prefix bool, words []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	last := len(phrase) - 1
	for i := 0; i+last < len(words); i++ {
		ok := true
		for j, p := range phrase {
			w := words[i+j]
			if j == last && prefix {
				ok = strings.HasPrefix(w, p)
			} else {
				ok = w == p
			}
			if !ok {
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
