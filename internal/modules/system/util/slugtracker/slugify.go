package slugtracker

import (
	"strings"
	"unicode"
)

// MaxSlugLength bounds generated slugs, in runes.
const MaxSlugLength = 96

// Slugify lower-cases value and collapses every run of characters that are
// not letters or digits into a single hyphen. Leading and trailing hyphens
// are dropped and the result is cut to MaxSlugLength runes. An empty result
// yields fallback.
func Slugify(value, fallback string) string {
	var sb strings.Builder
	sb.Grow(len(value))

	pendingHyphen := false
	n := 0
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingHyphen = n > 0
			continue
		}
		if pendingHyphen {
			if n+1 >= MaxSlugLength {
				break
			}
			sb.WriteByte('-')
			n++
			pendingHyphen = false
		}
		if n >= MaxSlugLength {
			break
		}
		sb.WriteRune(r)
		n++
	}

	if sb.Len() == 0 {
		return fallback
	}
	return sb.String()
}
