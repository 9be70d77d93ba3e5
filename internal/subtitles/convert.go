package subtitles

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
)

// timedDocument is the downloader's timed-subtitle JSON: a flat list of cues
// with fractional-second boundaries.
type timedDocument struct {
	Body []timedCue `json:"body"`
}

type timedCue struct {
	From    float64 `json:"from"`
	To      float64 `json:"to"`
	Content string  `json:"content"`
}

// ConvertTimedToSubRip converts a timed-JSON subtitle file into SubRip text
// at destPath. Cues with empty content are dropped; everything else carries
// through verbatim.
func ConvertTimedToSubRip(sourcePath, destPath string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("read timed subtitle: %w", err)
	}

	var doc timedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse timed subtitle %s: %w", sourcePath, err)
	}
	if len(doc.Body) == 0 {
		return fmt.Errorf("timed subtitle %s has no cues", sourcePath)
	}

	var b strings.Builder
	index := 1
	for _, cue := range doc.Body {
		if strings.TrimSpace(cue.Content) == "" {
			continue
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", index, formatTimestamp(cue.From), formatTimestamp(cue.To), cue.Content)
		index++
	}
	if index == 1 {
		return fmt.Errorf("timed subtitle %s has no usable cues", sourcePath)
	}

	if err := os.WriteFile(destPath, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// formatTimestamp renders seconds as HH:MM:SS,cc. The downloader's cues carry
// centisecond precision, so the fraction keeps two digits.
func formatTimestamp(seconds float64) string {
	whole, frac := math.Modf(seconds)
	total := int(whole)
	hour := total / 3600
	minute := (total % 3600) / 60
	sec := total % 60
	centi := int(frac * 100)
	return fmt.Sprintf("%02d:%02d:%02d,%02d", hour, minute, sec, centi)
}
