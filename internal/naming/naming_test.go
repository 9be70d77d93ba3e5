package naming_test

import (
	"testing"

	"bilimux/internal/naming"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		title  string
		season int
		tag    string
		want   string
	}{
		{"My Anime!!", 2, "01", "My Anime - S02E01"},
		{"Show", 1, "Episode Five", "Show - S01EEpisode Five"},
		{"Demo", 1, "03", "Demo - S01E03"},
		{"Demo", 1, "ep12final", "Demo - S01E12"},
		{"Demo", 1, "part 7 of 9", "Demo - S01E07"},
		{"Demo", 12, "103", "Demo - S12E103"},
		{"  Spaced  ", 1, "1", "Spaced - S01E01"},
		{"!!!", 1, "01", "Unknown - S01E01"},
		{"Tiêu đề 異世界", 3, "2", "Tiêu đề 異世界 - S03E02"},
	}
	for _, tc := range cases {
		if got := naming.Format(tc.title, tc.season, tc.tag); got != tc.want {
			t.Errorf("Format(%q, %d, %q) = %q, want %q", tc.title, tc.season, tc.tag, got, tc.want)
		}
	}
}

func TestFormatIsDeterministic(t *testing.T) {
	first := naming.Format("Some Show: Part II", 4, "08v2")
	for i := 0; i < 5; i++ {
		if got := naming.Format("Some Show: Part II", 4, "08v2"); got != first {
			t.Fatalf("Format not deterministic: %q vs %q", got, first)
		}
	}
}

func TestSafeTitle(t *testing.T) {
	cases := map[string]string{
		"My Anime!!":     "My Anime",
		"a/b\\c:d":       "abcd",
		"under_score-ok": "under_score-ok",
		"":               "Unknown",
		"   ":            "Unknown",
	}
	for in, want := range cases {
		if got := naming.SafeTitle(in); got != want {
			t.Errorf("SafeTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
