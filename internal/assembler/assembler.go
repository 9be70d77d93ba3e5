package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bilimux/internal/config"
	"bilimux/internal/discovery"
	"bilimux/internal/entry"
	"bilimux/internal/fileutil"
	"bilimux/internal/hwaccel"
	"bilimux/internal/logging"
	"bilimux/internal/mux"
	"bilimux/internal/naming"
	"bilimux/internal/services"
	"bilimux/internal/subtitles"
)

// Status classifies how a pipeline stage ended for one unit.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome records a single stage's result.
type Outcome struct {
	Status Status
	Detail string
	Err    error
}

func completed(detail string) Outcome { return Outcome{Status: StatusCompleted, Detail: detail} }

func skipped(reason string) Outcome { return Outcome{Status: StatusSkipped, Detail: reason} }

func failed(err error, detail string) Outcome {
	return Outcome{Status: StatusFailed, Detail: detail, Err: err}
}

// MediaSet names the artifacts one unit produces in the output directory.
type MediaSet struct {
	AudioPath     string
	VideoPath     string
	ContainerPath string
	SidecarPath   string
}

// Result is the full per-unit processing record.
type Result struct {
	UnitPath   string
	BaseName   string
	Descriptor entry.Descriptor
	Tracks     map[string]subtitles.Track
	Media      MediaSet

	DescriptorStage Outcome
	SubtitleStage   Outcome
	SourceStage     Outcome
	CopyStage       Outcome
	MuxStage        Outcome
	SidecarStage    Outcome
}

// Success reports whether no stage failed. Skipped stages do not count
// against a unit.
func (r Result) Success() bool {
	for _, outcome := range r.stages() {
		if outcome.Status == StatusFailed {
			return false
		}
	}
	return true
}

func (r Result) stages() []Outcome {
	return []Outcome{
		r.DescriptorStage, r.SubtitleStage, r.SourceStage,
		r.CopyStage, r.MuxStage, r.SidecarStage,
	}
}

// SubtitleResolver materializes a unit's subtitle tracks in the output
// directory.
type SubtitleResolver interface {
	Resolve(ctx context.Context, unitPath, subtitleURL, baseName string) map[string]subtitles.Track
}

// ContainerMuxer assembles the final container for a unit.
type ContainerMuxer interface {
	Mux(ctx context.Context, req mux.Request) error
}

// Assembler runs the per-unit pipeline: descriptor, subtitles, source
// resolution, asset copy, container mux, sidecar.
type Assembler struct {
	layout    config.Layout
	outputDir string
	season    int
	resolver  SubtitleResolver
	muxer     ContainerMuxer
	profile   hwaccel.Profile
	logger    *slog.Logger
}

// New wires an assembler from the loaded configuration. The season overrides
// the configured value when the caller resolved it interactively.
func New(cfg *config.Config, season int, resolver SubtitleResolver, muxer ContainerMuxer, profile hwaccel.Profile, logger *slog.Logger) *Assembler {
	return &Assembler{
		layout:    cfg.Layout,
		outputDir: cfg.Paths.OutputDir,
		season:    season,
		resolver:  resolver,
		muxer:     muxer,
		profile:   profile,
		logger:    logging.NewComponentLogger(logger, "assembler"),
	}
}

// Process runs every stage for one unit. Stages degrade independently: a
// malformed descriptor falls back to folder-name defaults, missing media
// skips the copy and mux stages but never the subtitles, and a mux failure
// still lets the sidecar record what was produced.
func (a *Assembler) Process(ctx context.Context, unit discovery.Unit) Result {
	result := Result{UnitPath: unit.Path}

	if err := fileutil.EnsureDir(a.outputDir); err != nil {
		wrapped := services.Wrap(services.ErrConfiguration, "assemble", "prepare output",
			"create output directory", err)
		result.DescriptorStage = failed(wrapped, "output directory unavailable")
		return result
	}

	descriptorPath := filepath.Join(unit.Path, a.layout.DescriptorName)
	descriptor, err := entry.Extract(descriptorPath, a.layout.RemoteSubtitleLng)
	result.Descriptor = descriptor
	if err != nil {
		a.logger.Warn("descriptor unreadable, using folder-name defaults",
			logging.String("unit", unit.Path),
			logging.Error(err),
		)
		result.DescriptorStage = Outcome{Status: StatusCompleted, Detail: "defaults after parse failure", Err: err}
	} else {
		result.DescriptorStage = completed("title " + descriptor.Title)
	}

	result.BaseName = naming.Format(descriptor.Title, a.season, descriptor.EpisodeTag)
	a.logger.Info("processing unit",
		logging.String("unit", unit.Path),
		logging.String("name", result.BaseName),
	)

	result.Tracks = a.resolver.Resolve(ctx, unit.Path, descriptor.SubtitleURL, result.BaseName)
	if len(result.Tracks) == 0 {
		result.SubtitleStage = skipped("no subtitle tracks found")
	} else {
		result.SubtitleStage = completed(fmt.Sprintf("%d track(s)", len(result.Tracks)))
	}

	sourceDir, sourceErr := a.resolveSource(unit.Path, descriptor.PreferredQuality)
	if sourceErr != nil {
		// Absence-class markers mean the unit simply has nothing to
		// assemble; anything else is a real failure.
		if services.IsAbsence(sourceErr) {
			a.logger.Info("unit has no usable media source",
				logging.String("unit", unit.Path),
				logging.Error(sourceErr),
			)
			result.SourceStage = skipped(sourceErr.Error())
		} else {
			result.SourceStage = failed(sourceErr, "source resolution failed")
		}
		result.CopyStage = skipped("no media source")
		result.MuxStage = skipped("no media source")
		result.SidecarStage = skipped("no media source")
		return result
	}
	result.SourceStage = completed("quality " + descriptor.PreferredQuality)

	result.Media = MediaSet{
		AudioPath:     filepath.Join(a.outputDir, result.BaseName+"_audio.m4s"),
		VideoPath:     filepath.Join(a.outputDir, result.BaseName+"_video.m4s"),
		ContainerPath: filepath.Join(a.outputDir, result.BaseName+".mkv"),
		SidecarPath:   filepath.Join(a.outputDir, result.BaseName+"_metadata.txt"),
	}

	result.CopyStage = a.copyAssets(sourceDir, result.Media)
	if result.CopyStage.Status == StatusFailed {
		result.MuxStage = skipped("asset copy failed")
		result.SidecarStage = skipped("asset copy failed")
		return result
	}

	result.MuxStage = a.muxContainer(ctx, result)
	result.SidecarStage = a.writeSidecar(unit.Path, result)
	return result
}

// resolveSource returns the directory holding the audio and video assets.
// Only the folder the descriptor declares counts; there is no guessing.
// Absence, of the declaration or of the assets inside the named folder, is
// reported with an absence-class marker so the caller skips the unit's
// dependent stages.
func (a *Assembler) resolveSource(unitPath, preferredQuality string) (string, error) {
	if preferredQuality == "" {
		return "", services.Wrap(services.ErrNotFound, "assemble", "resolve source",
			"descriptor declares no quality folder", nil)
	}
	dir := filepath.Join(unitPath, preferredQuality)
	if !a.hasMediaPair(dir) {
		return "", services.Wrap(services.ErrNotFound, "assemble", "resolve source",
			fmt.Sprintf("quality folder %s lacks a complete media pair", preferredQuality), nil)
	}
	return dir, nil
}

func (a *Assembler) hasMediaPair(dir string) bool {
	return fileutil.Exists(filepath.Join(dir, a.layout.AudioAssetName)) &&
		fileutil.Exists(filepath.Join(dir, a.layout.VideoAssetName))
}

func (a *Assembler) copyAssets(sourceDir string, media MediaSet) Outcome {
	copies := []struct {
		src, dst string
	}{
		{filepath.Join(sourceDir, a.layout.AudioAssetName), media.AudioPath},
		{filepath.Join(sourceDir, a.layout.VideoAssetName), media.VideoPath},
	}
	fresh := 0
	for _, c := range copies {
		copied, err := fileutil.CopyFileIfMissing(c.src, c.dst)
		if err != nil {
			return failed(services.Wrap(services.ErrTransient, "assemble", "copy assets",
				fmt.Sprintf("copy %s", filepath.Base(c.src)), err), "copy failed")
		}
		if copied {
			fresh++
		}
	}
	if fresh == 0 {
		return completed("assets already in place")
	}
	return completed(fmt.Sprintf("%d asset(s) copied", fresh))
}

func (a *Assembler) muxContainer(ctx context.Context, result Result) Outcome {
	if fileutil.Exists(result.Media.ContainerPath) {
		return skipped("container already assembled")
	}
	err := a.muxer.Mux(ctx, mux.Request{
		VideoPath:  result.Media.VideoPath,
		AudioPath:  result.Media.AudioPath,
		Subtitles:  result.Tracks,
		OutputPath: result.Media.ContainerPath,
		Profile:    a.profile,
	})
	if err != nil {
		return failed(err, "mux failed")
	}
	return completed(filepath.Base(result.Media.ContainerPath))
}

// writeSidecar renders the plain-text companion file. The content depends
// only on the unit's inputs, so reruns rewrite identical bytes.
func (a *Assembler) writeSidecar(unitPath string, result Result) Outcome {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", result.Descriptor.Title)
	fmt.Fprintf(&b, "Season: %d\n", a.season)
	fmt.Fprintf(&b, "Episode: %s\n", result.Descriptor.EpisodeTag)
	fmt.Fprintf(&b, "Audio: %s\n", result.Media.AudioPath)
	fmt.Fprintf(&b, "Video: %s\n", result.Media.VideoPath)
	fmt.Fprintf(&b, "Container: %s\n", result.Media.ContainerPath)

	languages := make([]string, 0, len(result.Tracks))
	for lang := range result.Tracks {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	for _, lang := range languages {
		fmt.Fprintf(&b, "Subtitle [%s]: %s\n", lang, result.Tracks[lang].Path)
	}
	fmt.Fprintf(&b, "Source: %s\n", unitPath)

	if err := os.WriteFile(result.Media.SidecarPath, []byte(b.String()), 0o644); err != nil {
		return failed(services.Wrap(services.ErrTransient, "assemble", "write sidecar",
			"write metadata file", err), "sidecar write failed")
	}
	return completed(filepath.Base(result.Media.SidecarPath))
}
