package models

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fallbackSlug is used when a title has no characters that survive slugification
const fallbackSlug = "post"

// Slugify lowercases s, folds accented letters to ASCII and joins the
// remaining alphanumeric runs with single hyphens.
func Slugify(s string) string {
	// transform.Chain keeps state, so it is built per call
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	separate := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if separate && b.Len() > 0 {
				b.WriteByte('-')
			}
			separate = false
			b.WriteRune(r)
			continue
		}
		separate = true
	}
	return b.String()
}

// BaseSlug derives the slug a post with this title would get if it were free.
func BaseSlug(title string) string {
	if slug := Slugify(title); slug != "" {
		return slug
	}
	return fallbackSlug
}

// SuffixedSlug appends a microsecond timestamp to base.
func SuffixedSlug(base string, at time.Time) string {
	return base + "-" + strconv.FormatInt(at.UnixMicro(), 10)
}
