package naming

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Format derives the deterministic TV-style base filename for an episode:
// "<SafeTitle> - S<NN>E<NN>". The episode segment falls back to the first run
// of digits inside the tag, and finally to the literal tag when it carries no
// digits at all.
func Format(title string, season int, episodeTag string) string {
	return fmt.Sprintf("%s - S%02d%s", SafeTitle(title), season, episodeSegment(episodeTag))
}

// SafeTitle reduces a title to filesystem-safe characters: letters, digits,
// spaces, underscores, and hyphens survive; everything else is dropped and
// the result trimmed. An empty result becomes "Unknown".
func SafeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if safe == "" {
		return "Unknown"
	}
	return safe
}

func episodeSegment(tag string) string {
	trimmed := strings.TrimSpace(tag)
	if n, err := strconv.Atoi(trimmed); err == nil {
		return fmt.Sprintf("E%02d", n)
	}
	if digits := firstDigitRun(trimmed); digits != "" {
		n, _ := strconv.Atoi(digits)
		return fmt.Sprintf("E%02d", n)
	}
	// No digits anywhere: the tag rides along verbatim.
	return "E" + tag
}

func firstDigitRun(s string) string {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return s[start:i]
		}
	}
	if start >= 0 {
		return s[start:]
	}
	return ""
}
