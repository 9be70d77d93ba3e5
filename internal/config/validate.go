package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.SourceDir == "" {
		return errors.New("paths.source_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.SourceDir == c.Paths.OutputDir {
		return errors.New("paths.output_dir must differ from paths.source_dir")
	}
	if c.Assembly.Season < 0 || c.Assembly.Season > 99 {
		return fmt.Errorf("assembly.season must be between 1 and 99 (or 0 to prompt), got %d", c.Assembly.Season)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
