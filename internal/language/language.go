package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var english = display.English.Languages()

// Normalize lowercases and trims a language code. Empty input stays empty.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// DisplayName returns a human-readable English name for an ISO 639-1 code,
// e.g. "en" -> "English", "vi" -> "Vietnamese". Unrecognized codes fall back
// to their uppercased form so track titles stay informative.
func DisplayName(code string) string {
	normalized := Normalize(code)
	if normalized == "" {
		return "Unknown"
	}
	tag, err := language.Parse(normalized)
	if err != nil {
		return strings.ToUpper(normalized)
	}
	name := english.Name(tag)
	if name == "" {
		return strings.ToUpper(normalized)
	}
	return name
}

// TrackTitle builds the subtitle track title embedded in the container
// metadata, e.g. "English Subtitle".
func TrackTitle(code string) string {
	return DisplayName(code) + " Subtitle"
}
