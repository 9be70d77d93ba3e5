package mux

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"

	"bilimux/internal/fileutil"
	"bilimux/internal/hwaccel"
	"bilimux/internal/language"
	"bilimux/internal/logging"
	"bilimux/internal/services"
	"bilimux/internal/subtitles"
)

// Request carries everything one container assembly needs.
type Request struct {
	VideoPath  string
	AudioPath  string
	Subtitles  map[string]subtitles.Track
	OutputPath string
	Profile    hwaccel.Profile
}

type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// Muxer drives ffmpeg to assemble the final MKV container.
type Muxer struct {
	binary string
	run    commandRunner
	logger *slog.Logger
}

// NewMuxer constructs a muxer around the configured ffmpeg binary.
func NewMuxer(binary string, logger *slog.Logger) *Muxer {
	return &Muxer{
		binary: binary,
		run:    defaultCommandRunner,
		logger: logging.NewComponentLogger(logger, "mux"),
	}
}

// WithCommandRunner injects an ffmpeg runner (used in tests).
func (m *Muxer) WithCommandRunner(run commandRunner) {
	if m != nil && run != nil {
		m.run = run
	}
}

// Mux assembles the container. An accelerated attempt that fails is retried
// once without the acceleration flag before giving up; a plain attempt gets
// no retry. Success requires both a zero exit status and the output file
// actually existing afterwards.
func (m *Muxer) Mux(ctx context.Context, req Request) error {
	args := BuildArgs(req, req.Profile.Accelerated())
	m.logger.Info("muxing container",
		logging.String("output", req.OutputPath),
		logging.String("hwaccel", req.Profile.AccelFlag),
		logging.Int("subtitle_tracks", len(req.Subtitles)),
	)
	err := m.attempt(ctx, args, req.OutputPath)
	if err == nil {
		return nil
	}
	if !req.Profile.Accelerated() {
		return err
	}

	m.logger.Warn("accelerated mux failed, retrying without acceleration",
		logging.String("output", req.OutputPath),
		logging.Error(err),
	)
	return m.attempt(ctx, BuildArgs(req, false), req.OutputPath)
}

func (m *Muxer) attempt(ctx context.Context, args []string, outputPath string) error {
	output, err := m.run(ctx, m.binary, args...)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "mux", "ffmpeg",
			fmt.Sprintf("ffmpeg failed: %s", tail(output)), err)
	}
	if !fileutil.Exists(outputPath) {
		return services.Wrap(services.ErrExternalTool, "mux", "ffmpeg",
			"ffmpeg exited cleanly but produced no output file", nil)
	}
	return nil
}

// BuildArgs renders the full ffmpeg argument list for one attempt. Subtitle
// inputs are ordered by language code so the command line is stable across
// runs. The accelerated flag controls only the decode hint and the codec
// form; stream selection and metadata are identical either way.
func BuildArgs(req Request, accelerated bool) []string {
	languages := sortedLanguages(req.Subtitles)

	args := []string{"-y"}
	if accelerated {
		args = append(args, "-hwaccel", req.Profile.AccelFlag)
	}
	args = append(args, "-i", req.VideoPath, "-i", req.AudioPath)
	for _, lang := range languages {
		args = append(args, "-i", req.Subtitles[lang].Path)
	}

	args = append(args, "-map", "0:v:0", "-map", "1:a:0")
	for i := range languages {
		args = append(args, "-map", fmt.Sprintf("%d:s?", i+2))
	}

	if accelerated {
		args = append(args, "-c:v", "copy", "-c:a", "copy", "-c:s", "copy")
	} else {
		args = append(args, "-c", "copy")
	}

	for i, lang := range languages {
		args = append(args,
			fmt.Sprintf("-metadata:s:s:%d", i), "language="+lang,
			fmt.Sprintf("-metadata:s:s:%d", i), "title="+language.TrackTitle(lang),
		)
	}

	return append(args, req.OutputPath)
}

func sortedLanguages(tracks map[string]subtitles.Track) []string {
	languages := make([]string, 0, len(tracks))
	for lang := range tracks {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}

// tail keeps the last few lines of ffmpeg output, which is where the actual
// failure reason lands.
func tail(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return "no tool output"
	}
	lines := strings.Split(output, "\n")
	if len(lines) > 4 {
		lines = lines[len(lines)-4:]
	}
	return strings.Join(lines, " | ")
}
