package subtitles

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bilimux/internal/config"
	"bilimux/internal/fileutil"
	"bilimux/internal/logging"
)

// SourceKind identifies where a subtitle track came from.
type SourceKind string

const (
	SourceRemote SourceKind = "remote"
	SourceLocal  SourceKind = "local"
)

// Format identifies the on-disk subtitle format of a resolved track.
type Format string

const (
	FormatTimedJSON Format = "json"
	FormatASS       Format = "ass"
	FormatSRT       Format = "srt"
)

const (
	extJSON = ".json"
	extASS  = ".ass"
	extSRT  = ".srt"
)

// Track is one finished subtitle file keyed by language in the resolver's
// output map.
type Track struct {
	Language string
	Source   SourceKind
	Format   Format
	Path     string
}

// Resolver reconciles remote and local subtitle sources into one language to
// track mapping. Every step skips work whose destination already exists, so
// repeated runs are cheap and never redownload or reconvert.
type Resolver struct {
	layout    config.Layout
	outputDir string
	fetcher   Fetcher
	convert   func(sourcePath, destPath string) error
	logger    *slog.Logger
}

// NewResolver constructs a resolver writing into outputDir.
func NewResolver(layout config.Layout, outputDir string, fetcher Fetcher, logger *slog.Logger) *Resolver {
	return &Resolver{
		layout:    layout,
		outputDir: outputDir,
		fetcher:   fetcher,
		convert:   ConvertTimedToSubRip,
		logger:    logging.NewComponentLogger(logger, "subtitles"),
	}
}

// WithConverter injects a timed-JSON converter (used in tests).
func (r *Resolver) WithConverter(convert func(sourcePath, destPath string) error) {
	if r != nil && convert != nil {
		r.convert = convert
	}
}

// Resolve produces the language-to-track mapping for one unit: the remote
// subtitle named by subtitleURL (if any) and whatever the unit's local
// subtitle folder holds. Failures along the way are logged and leave the
// affected language slot empty; they never abort the unit.
func (r *Resolver) Resolve(ctx context.Context, unitPath, subtitleURL, baseName string) map[string]Track {
	tracks := make(map[string]Track)
	if err := fileutil.EnsureDir(r.outputDir); err != nil {
		r.logger.Error("cannot create output directory", logging.String("dir", r.outputDir), logging.Error(err))
		return tracks
	}
	r.resolveRemote(ctx, subtitleURL, baseName, tracks)
	r.resolveLocal(unitPath, baseName, tracks)
	return tracks
}

func (r *Resolver) resolveRemote(ctx context.Context, subtitleURL, baseName string, tracks map[string]Track) {
	lang := r.layout.RemoteSubtitleLng
	if strings.TrimSpace(subtitleURL) == "" {
		r.logger.Debug("no remote subtitle listed", logging.String("base", baseName))
		return
	}

	ext := extASS
	if strings.Contains(strings.ToLower(subtitleURL), extJSON) {
		ext = extJSON
	}
	rawPath := filepath.Join(r.outputDir, baseName+"."+lang+ext)

	if !fileutil.Exists(rawPath) {
		if err := r.fetcher.Fetch(ctx, subtitleURL, rawPath); err != nil {
			r.logger.Error("subtitle download failed",
				logging.String("url", subtitleURL),
				logging.String("language", lang),
				logging.Error(err),
			)
			return
		}
		r.logger.Info("subtitle downloaded", logging.String("path", rawPath), logging.String("language", lang))
	}

	if ext != extJSON {
		r.set(tracks, Track{Language: lang, Source: SourceRemote, Format: FormatASS, Path: rawPath})
		return
	}

	srtPath := filepath.Join(r.outputDir, baseName+"."+lang+extSRT)
	if r.ensureConverted(rawPath, srtPath) {
		r.set(tracks, Track{Language: lang, Source: SourceRemote, Format: FormatSRT, Path: srtPath})
		return
	}
	// Conversion failed: hand back the raw download rather than nothing.
	r.set(tracks, Track{Language: lang, Source: SourceRemote, Format: FormatTimedJSON, Path: rawPath})
}

func (r *Resolver) resolveLocal(unitPath, baseName string, tracks map[string]Track) {
	lang := r.layout.LocalSubtitleLng
	subtitleDir := filepath.Join(unitPath, r.layout.SubtitleDirName)
	if !fileutil.DirExists(subtitleDir) {
		r.logger.Debug("no local subtitle folder", logging.String("unit", unitPath))
		return
	}

	entries, err := os.ReadDir(subtitleDir)
	if err != nil {
		r.logger.Warn("cannot list subtitle folder", logging.String("dir", subtitleDir), logging.Error(err))
		return
	}

	// Fixed class order: timed JSON first, then the native format. Each
	// successive match overwrites the language slot, so a native file ends
	// up shadowing a converted JSON one.
	for _, ext := range []string{extJSON, extASS} {
		for _, item := range entries {
			if item.IsDir() || !strings.HasSuffix(item.Name(), ext) {
				continue
			}
			sourcePath := filepath.Join(subtitleDir, item.Name())
			destPath := filepath.Join(r.outputDir, baseName+"."+lang+ext)

			copied, err := fileutil.CopyFileIfMissing(sourcePath, destPath)
			if err != nil {
				r.logger.Error("subtitle copy failed", logging.String("source", sourcePath), logging.Error(err))
				continue
			}
			if copied {
				r.logger.Info("subtitle copied", logging.String("path", destPath), logging.String("language", lang))
			}

			if ext == extJSON {
				srtPath := filepath.Join(r.outputDir, baseName+"."+lang+extSRT)
				if r.ensureConverted(destPath, srtPath) {
					r.set(tracks, Track{Language: lang, Source: SourceLocal, Format: FormatSRT, Path: srtPath})
				}
				continue
			}
			r.set(tracks, Track{Language: lang, Source: SourceLocal, Format: FormatASS, Path: destPath})
		}
	}
}

// ensureConverted converts sourcePath to SubRip at destPath unless the
// destination already exists. It reports whether destPath is usable.
func (r *Resolver) ensureConverted(sourcePath, destPath string) bool {
	if fileutil.Exists(destPath) {
		return true
	}
	if err := r.convert(sourcePath, destPath); err != nil {
		r.logger.Error("subtitle conversion failed",
			logging.String("source", sourcePath),
			logging.Error(err),
		)
		return false
	}
	r.logger.Info("subtitle converted", logging.String("path", destPath))
	return true
}

func (r *Resolver) set(tracks map[string]Track, track Track) {
	if previous, ok := tracks[track.Language]; ok && previous.Path != track.Path {
		r.logger.Debug("subtitle track replaced",
			logging.String("language", track.Language),
			logging.String("previous", previous.Path),
			logging.String("replacement", track.Path),
		)
	}
	tracks[track.Language] = track
}
