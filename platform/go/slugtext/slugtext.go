// Package slugtext turns free-form Italian text into URL-safe slug tokens.
package slugtext

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmpty is returned by Normalize when no slug-safe characters survive.
var ErrEmpty = errors.New("slug is empty after normalization")

var (
	Pattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	whitespaceRun = regexp.MustCompile(`\s+`)
	disallowed    = regexp.MustCompile(`[^a-z0-9-]`)
	dashRun       = regexp.MustCompile(`-+`)
)

// ToURLSafe lowercases the input, strips diacritics and collapses everything that is not
// [a-z0-9] into single hyphens. The result matches Pattern or is empty.
func ToURLSafe(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}

	s = whitespaceRun.ReplaceAllString(s, "-")
	s = stripDiacritics(s)
	s = disallowed.ReplaceAllString(s, "")
	s = dashRun.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

// Normalize is ToURLSafe with an explicit failure for inputs that normalize to nothing.
func Normalize(input string) (string, error) {
	s := ToURLSafe(input)
	if s == "" {
		return "", ErrEmpty
	}
	return s, nil
}

// OrDefault normalizes input and returns fallback when nothing survives.
func OrDefault(input, fallback string) string {
	if s := ToURLSafe(input); s != "" {
		return s
	}
	return fallback
}

// IsSlug reports whether s is a non-empty canonical slug.
func IsSlug(s string) bool {
	return Pattern.MatchString(s)
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
