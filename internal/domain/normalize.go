package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeKey derives the search key stored in index tables:
// lowercase, underscores replaced with spaces.
func NormalizeKey(s string) string {
	return cases.Lower(language.Und).String(strings.ReplaceAll(s, "_", " "))
}

// LowerKey lowercases without touching underscores. User names never contain
// underscores in canonical form, so the user index only lowercases.
func LowerKey(s string) string {
	return cases.Lower(language.Und).String(s)
}

// DBKey converts display text into the primary store's key form.
func DBKey(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), " ", "_")
}

// Text converts a primary store key into display text.
func Text(dbKey string) string {
	return strings.ReplaceAll(dbKey, "_", " ")
}
