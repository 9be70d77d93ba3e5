package testsupport

import (
	"path/filepath"
	"testing"

	"bilimux/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "source")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Assembly.Season = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSeason overrides the configured season.
func WithSeason(season int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Assembly.Season = season
	}
}

// WithFFmpegBinary overrides the ffmpeg binary name.
func WithFFmpegBinary(binary string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Assembly.FFmpegBinary = binary
	}
}
