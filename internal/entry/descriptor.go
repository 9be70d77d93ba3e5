package entry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Descriptor is the structured form of an episode unit's entry.json. All
// fields are optional in the document; absent values default to the zero
// string, except Title which defaults to the containing folder's name.
type Descriptor struct {
	Title            string
	EpisodeTag       string
	EpisodeID        string
	SubtitleURL      string
	PreferredQuality string
}

// rawDescriptor mirrors the downloader's entry.json document. Numeric fields
// arrive as either JSON numbers or strings depending on downloader version,
// so the scalars are decoded through flexString.
type rawDescriptor struct {
	Title    string     `json:"title"`
	Episode  rawEpisode `json:"ep"`
	Subtitle struct {
		Subtitles []rawSubtitle `json:"subtitles"`
	} `json:"danmakuSubtitleReply"`
	PreferredQuality flexString `json:"prefered_video_quality"`
}

type rawEpisode struct {
	Page      flexString `json:"page"`
	EpisodeID flexString `json:"episode_id"`
}

type rawSubtitle struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// flexString accepts a JSON string or number and keeps its verbatim string
// form, so purely numeric quality labels stay usable as folder names.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// defaulted returns the Descriptor used when the document is missing or
// unreadable: the folder name stands in for the title.
func defaulted(descriptorPath string) Descriptor {
	return Descriptor{Title: filepath.Base(filepath.Dir(descriptorPath))}
}

// Extract parses the descriptor at descriptorPath, selecting the subtitle URL
// whose language key equals subtitleLanguage (first match wins). A missing
// file yields the defaulted record with no diagnostic; a malformed file
// yields the defaulted record plus a diagnostic the caller should log. The
// returned error is never fatal to unit processing.
func Extract(descriptorPath, subtitleLanguage string) (Descriptor, error) {
	info := defaulted(descriptorPath)

	data, err := os.ReadFile(descriptorPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return info, nil
		}
		return info, fmt.Errorf("read descriptor: %w", err)
	}

	var raw rawDescriptor
	if err := json.Unmarshal(data, &raw); err != nil {
		return info, fmt.Errorf("parse descriptor: %w", err)
	}

	if title := strings.TrimSpace(raw.Title); title != "" {
		info.Title = title
	}
	info.EpisodeTag = string(raw.Episode.Page)
	info.EpisodeID = string(raw.Episode.EpisodeID)
	info.PreferredQuality = string(raw.PreferredQuality)

	for _, sub := range raw.Subtitle.Subtitles {
		if sub.Key == subtitleLanguage {
			info.SubtitleURL = sub.URL
			break
		}
	}
	return info, nil
}

// EpisodeNumber reports the tag's numeric value when the whole tag is an
// integer, which lets callers distinguish "03" from free-form tags.
func (d Descriptor) EpisodeNumber() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(d.EpisodeTag))
	if err != nil {
		return 0, false
	}
	return n, true
}
