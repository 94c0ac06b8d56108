// Package matcher provides the default text matcher used by exact and
// keyword rules.
package matcher

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Matcher compares replies after Unicode normalization and case folding.
// The zero value is ready to use.
type Matcher struct {
	// KeepCase disables case folding.
	KeepCase bool
}

// New returns a case-insensitive matcher.
func New() *Matcher { return &Matcher{} }

// Match implements domain.Matcher.
//
// Exact mode compares the whole reply, ignoring surrounding whitespace.
// Keyword mode succeeds when the words of pattern appear as a contiguous run
// of words in the reply, so "cat" matches "a black cat" but not "catalog".
func (m *Matcher) Match(ctx context.Context, reply, pattern string, keyword bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r, p := m.canonical(reply), m.canonical(pattern)
	if !keyword {
		return strings.TrimSpace(r) == strings.TrimSpace(p), nil
	}
	return containsRun(words(r), words(p)), nil
}

func (m *Matcher) canonical(s string) string {
	s = norm.NFC.String(s)
	if m.KeepCase {
		return s
	}
	return cases.Fold().String(s)
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsRun(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, w := range needle {
			if haystack[i+j] != w {
				continue outer
			}
		}
		return true
	}
	return false
}
