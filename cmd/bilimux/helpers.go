package main

import (
	"fmt"
	"log/slog"
	"os"

	"bilimux/internal/config"
	"bilimux/internal/logging"
)

// commandContext shares the lazily loaded configuration between subcommands.
type commandContext struct {
	configFlag *string

	cfg        *config.Config
	configPath string
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	flagValue := ""
	if c.configFlag != nil {
		flagValue = *c.configFlag
	}
	cfg, path, _, err := config.Load(flagValue)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	c.configPath = path
	return cfg, nil
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: os.Stderr,
	})
}
