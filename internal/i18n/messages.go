// Package i18n resolves interface message keys to localized text.
package i18n

import "maps"

// Messages is an immutable key to text lookup.
type Messages struct {
	texts map[string]string
}

// Defaults returns the built-in English messages.
func Defaults() map[string]string {
	return map[string]string{
		"blanknamespace":        "(Main)",
		"group-user":            "Users",
		"group-autoconfirmed":   "Autoconfirmed users",
		"group-sysop":           "Administrators",
		"group-bureaucrat":      "Bureaucrats",
		"group-bot":             "Bots",
		"group-interface-admin": "Interface administrators",
		"group-suppress":        "Suppressors",
	}
}

// New creates a lookup from Defaults overlaid with overrides.
func New(overrides map[string]string) *Messages {
	texts := Defaults()
	maps.Copy(texts, overrides)
	return &Messages{texts: texts}
}

// Exists reports whether key has a text.
func (m *Messages) Exists(key string) bool {
	_, ok := m.texts[key]
	return ok
}

// Text returns the text of key, or the key itself when unknown.
func (m *Messages) Text(key string) string {
	if t, ok := m.texts[key]; ok {
		return t
	}
	return key
}

// TextOr returns the text of key, or fallback when unknown.
func (m *Messages) TextOr(key, fallback string) string {
	if t, ok := m.texts[key]; ok {
		return t
	}
	return fallback
}
