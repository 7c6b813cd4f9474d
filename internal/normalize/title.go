package normalize

import (
	"regexp"
	"strings"
)

// Folding rules mirror what the stores actually serve: Georgian and
// Cyrillic titles with decorative quotes and inconsistent spacing.
var (
	quoteChars   = regexp.MustCompile("[\"'`“”„’]")
	bracketChars = regexp.MustCompile(`[()\[\]{}]`)
	otherChars   = regexp.MustCompile(`[^0-9a-zA-Z\x{10A0}-\x{10FF}\x{0400}-\x{04FF}\s]+`)
	spaceRuns    = regexp.MustCompile(`\s+`)
)

// Title folds a display title into its search-matching form: lowercase,
// quotes dropped, brackets and everything outside [ASCII alnum, Georgian,
// Cyrillic, whitespace] collapsed to a single space. Returns "" when
// nothing survives; the empty result is stored as NULL, never matched.
// Title is used only for LIKE-style search, never for identity.
func Title(s string) string {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.ReplaceAll(t, "ё", "е")
	t = quoteChars.ReplaceAllString(t, "")
	t = bracketChars.ReplaceAllString(t, " ")
	t = otherChars.ReplaceAllString(t, " ")
	t = spaceRuns.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
