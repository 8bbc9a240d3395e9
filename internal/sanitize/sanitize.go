// Package sanitize normalizes and constrains untrusted form input.
//
// Every helper is pure and total: bad input degrades to a safe string
// (possibly empty), never to an error.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxLength is the maximum number of characters kept by Input.
const MaxLength = 5000

var (
	angleBrackets = regexp.MustCompile(`[<>]`)
	jsScheme      = regexp.MustCompile(`(?i)javascript:`)
	eventHandler  = regexp.MustCompile(`(?i)on\w+\s*=`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneReject   = regexp.MustCompile(`[^\d+\-\s()]`)
)

// Input trims s, removes angle brackets, "javascript:" schemes and inline
// event handler attributes (on<word>=), then truncates to MaxLength
// characters.
//
// Removal repeats until nothing changes, so input built to reassemble a
// pattern after one pass ("javajavascript:script:") is still cleaned, and
// Input(Input(s)) == Input(s) for every s.
func Input(s string) string {
	for {
		next := strip(s)
		if next == s {
			break
		}
		s = next
	}

	if r := []rune(s); len(r) > MaxLength {
		s = strings.TrimRightFunc(string(r[:MaxLength]), unicode.IsSpace)
	}
	return s
}

func strip(s string) string {
	s = strings.TrimSpace(s)
	s = angleBrackets.ReplaceAllString(s, "")
	s = jsScheme.ReplaceAllString(s, "")
	s = eventHandler.ReplaceAllString(s, "")
	return s
}

// Email sanitizes s and returns it only when it looks like an address
// (something@something.something, no whitespace, a single @). Otherwise it
// returns "" so the caller can reject the submission.
func Email(s string) string {
	s = Input(s)
	if !emailPattern.MatchString(s) {
		return ""
	}
	return s
}

// Phone sanitizes s and keeps only digits, '+', '-', whitespace and
// parentheses. Whitespace left next to removed characters is kept.
func Phone(s string) string {
	return phoneReject.ReplaceAllString(Input(s), "")
}

// Strings applies Input to every element, preserving order.
func Strings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, Input(v))
	}
	return out
}
