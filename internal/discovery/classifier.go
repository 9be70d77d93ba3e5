package discovery

import (
	"log/slog"
	"os"
	"path/filepath"

	"bilimux/internal/config"
	"bilimux/internal/entry"
	"bilimux/internal/fileutil"
	"bilimux/internal/logging"
)

// Classification records which unit markers a folder carries.
type Classification struct {
	HasDescriptor     bool
	HasSubtitleFolder bool
	HasMediaFolder    bool
}

// IsUnit reports whether at least one marker is present.
func (c Classification) IsUnit() bool {
	return c.HasDescriptor || c.HasSubtitleFolder || c.HasMediaFolder
}

// Unit is a directory holding one episode's raw assets.
type Unit struct {
	Path           string
	Classification Classification
}

// Classifier decides whether a directory is a processable episode unit.
type Classifier struct {
	layout config.Layout
	logger *slog.Logger
}

// NewClassifier constructs a classifier for the configured layout.
func NewClassifier(layout config.Layout, logger *slog.Logger) *Classifier {
	return &Classifier{layout: layout, logger: logging.NewComponentLogger(logger, "classifier")}
}

// Classify inspects a folder's immediate contents. A folder is a unit when it
// carries the descriptor file, or the descriptor names a preferred-quality
// child that exists, or the subtitle folder exists, or (when no preferred
// label is known) any immediate child holds both fixed-named media assets.
func (c *Classifier) Classify(path string) Classification {
	var result Classification

	descriptorPath := filepath.Join(path, c.layout.DescriptorName)
	result.HasDescriptor = fileutil.Exists(descriptorPath)
	result.HasSubtitleFolder = fileutil.DirExists(filepath.Join(path, c.layout.SubtitleDirName))

	if result.HasDescriptor {
		info, err := entry.Extract(descriptorPath, c.layout.RemoteSubtitleLng)
		if err != nil {
			c.logger.Warn("descriptor unreadable during classification",
				logging.String("path", descriptorPath), logging.Error(err))
		}
		if info.PreferredQuality != "" && fileutil.DirExists(filepath.Join(path, info.PreferredQuality)) {
			result.HasMediaFolder = true
		}
	}

	if !result.HasMediaFolder {
		result.HasMediaFolder = c.anyChildHasMediaPair(path)
	}
	return result
}

// IsUnit is the boolean form of Classify.
func (c *Classifier) IsUnit(path string) bool {
	return c.Classify(path).IsUnit()
}

func (c *Classifier) anyChildHasMediaPair(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		c.logger.Warn("cannot list folder", logging.String("path", path), logging.Error(err))
		return false
	}
	for _, item := range entries {
		if !item.IsDir() {
			continue
		}
		child := filepath.Join(path, item.Name())
		if fileutil.Exists(filepath.Join(child, c.layout.AudioAssetName)) &&
			fileutil.Exists(filepath.Join(child, c.layout.VideoAssetName)) {
			return true
		}
	}
	return false
}
