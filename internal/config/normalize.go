package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLayout()
	c.normalizeAssembly()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLayout() {
	if strings.TrimSpace(c.Layout.DescriptorName) == "" {
		c.Layout.DescriptorName = defaultDescriptorName
	}
	if strings.TrimSpace(c.Layout.SubtitleDirName) == "" {
		c.Layout.SubtitleDirName = defaultSubtitleDirName
	}
	if strings.TrimSpace(c.Layout.AudioAssetName) == "" {
		c.Layout.AudioAssetName = defaultAudioAssetName
	}
	if strings.TrimSpace(c.Layout.VideoAssetName) == "" {
		c.Layout.VideoAssetName = defaultVideoAssetName
	}
	if c.Layout.MaxScanDepth <= 0 {
		c.Layout.MaxScanDepth = defaultMaxScanDepth
	}
	c.Layout.RemoteSubtitleLng = strings.ToLower(strings.TrimSpace(c.Layout.RemoteSubtitleLng))
	if c.Layout.RemoteSubtitleLng == "" {
		c.Layout.RemoteSubtitleLng = defaultRemoteSubtitleLanguage
	}
	c.Layout.LocalSubtitleLng = strings.ToLower(strings.TrimSpace(c.Layout.LocalSubtitleLng))
	if c.Layout.LocalSubtitleLng == "" {
		c.Layout.LocalSubtitleLng = defaultLocalSubtitleLanguage
	}
}

func (c *Config) normalizeAssembly() {
	if strings.TrimSpace(c.Assembly.FFmpegBinary) == "" {
		c.Assembly.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Assembly.DownloadTimeoutSeconds <= 0 {
		c.Assembly.DownloadTimeoutSeconds = defaultDownloadTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
