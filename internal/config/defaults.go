package config

import "time"

const (
	defaultSourceDir = "~/bilibili_video"
	defaultOutputDir = "~/processed_media"
	defaultLogDir    = "~/.local/share/bilimux/logs"

	defaultDescriptorName  = "entry.json"
	defaultSubtitleDirName = "vi"
	defaultAudioAssetName  = "audio.m4s"
	defaultVideoAssetName  = "video.m4s"
	defaultMaxScanDepth    = 3

	defaultRemoteSubtitleLanguage = "en"
	defaultLocalSubtitleLanguage  = "vi"

	defaultFFmpegBinary           = "ffmpeg"
	defaultDownloadTimeoutSeconds = 60

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir: defaultSourceDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Layout: Layout{
			DescriptorName:    defaultDescriptorName,
			SubtitleDirName:   defaultSubtitleDirName,
			AudioAssetName:    defaultAudioAssetName,
			VideoAssetName:    defaultVideoAssetName,
			MaxScanDepth:      defaultMaxScanDepth,
			RemoteSubtitleLng: defaultRemoteSubtitleLanguage,
			LocalSubtitleLng:  defaultLocalSubtitleLanguage,
		},
		Assembly: Assembly{
			FFmpegBinary:           defaultFFmpegBinary,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DownloadTimeout converts the configured timeout to a duration.
func (c *Config) DownloadTimeout() time.Duration {
	seconds := c.Assembly.DownloadTimeoutSeconds
	if seconds <= 0 {
		seconds = defaultDownloadTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}
