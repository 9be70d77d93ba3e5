package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bilimux/internal/logging"
)

// Walker enumerates episode units under a root directory.
type Walker struct {
	classifier *Classifier
	logger     *slog.Logger
}

// NewWalker constructs a walker over the given classifier.
func NewWalker(classifier *Classifier, logger *slog.Logger) *Walker {
	return &Walker{classifier: classifier, logger: logging.NewComponentLogger(logger, "walker")}
}

type workItem struct {
	path  string
	depth int
}

// Walk returns every unit found at most maxDepth levels below root, in
// directory listing order level by level. A folder classified as a unit is
// recorded and never descended into; exceeding the depth budget stops the
// descent quietly. Only an unreadable root is an error.
func (w *Walker) Walk(root string, maxDepth int) ([]Unit, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}

	var units []Unit
	// Explicit work list instead of recursion: malformed trees can nest
	// arbitrarily deep.
	queue := []workItem{{path: root, depth: 0}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.depth > maxDepth {
			continue
		}

		entries, err := os.ReadDir(item.path)
		if err != nil {
			if item.path == root {
				return nil, fmt.Errorf("scan root: %w", err)
			}
			w.logger.Warn("skipping unreadable folder", logging.String("path", item.path), logging.Error(err))
			continue
		}

		for _, dirEntry := range entries {
			if !dirEntry.IsDir() {
				continue
			}
			child := filepath.Join(item.path, dirEntry.Name())
			classification := w.classifier.Classify(child)
			if classification.IsUnit() {
				units = append(units, Unit{Path: child, Classification: classification})
				w.logger.Debug("unit discovered",
					logging.String("path", child),
					logging.Int("depth", item.depth),
					logging.Bool("descriptor", classification.HasDescriptor),
					logging.Bool("subtitles", classification.HasSubtitleFolder),
					logging.Bool("media", classification.HasMediaFolder),
				)
				continue
			}
			queue = append(queue, workItem{path: child, depth: item.depth + 1})
		}
	}
	return units, nil
}
