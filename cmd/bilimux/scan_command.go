package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bilimux/internal/discovery"
	"bilimux/internal/entry"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List the episode units the source tree contains without processing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			walker := discovery.NewWalker(discovery.NewClassifier(cfg.Layout, logger), logger)
			units, err := walker.Walk(cfg.Paths.SourceDir, cfg.Layout.MaxScanDepth)
			if err != nil {
				return fmt.Errorf("scan source tree: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(units) == 0 {
				fmt.Fprintf(out, "No episode units found under %s\n", cfg.Paths.SourceDir)
				return nil
			}

			rows := make([][]string, 0, len(units))
			for _, unit := range units {
				rows = append(rows, scanRow(cfg.Paths.SourceDir, cfg.Layout.DescriptorName, cfg.Layout.RemoteSubtitleLng, unit))
			}
			fmt.Fprintln(out, renderScanTable(rows))
			fmt.Fprintf(out, "%d unit(s)\n", len(units))
			return nil
		},
	}
}

func scanRow(sourceDir, descriptorName, subtitleLanguage string, unit discovery.Unit) []string {
	rel, err := filepath.Rel(sourceDir, unit.Path)
	if err != nil {
		rel = unit.Path
	}

	descriptor, _ := entry.Extract(filepath.Join(unit.Path, descriptorName), subtitleLanguage)

	var subtitleMarks []string
	if descriptor.SubtitleURL != "" {
		subtitleMarks = append(subtitleMarks, "remote")
	}
	if unit.Classification.HasSubtitleFolder {
		subtitleMarks = append(subtitleMarks, "local")
	}
	subtitle := strings.Join(subtitleMarks, "+")
	if subtitle == "" {
		subtitle = "-"
	}

	media := "-"
	if unit.Classification.HasMediaFolder {
		media = "yes"
	}

	quality := descriptor.PreferredQuality
	if quality == "" {
		quality = "-"
	}

	return []string{rel, descriptor.Title, descriptor.EpisodeTag, quality, media, subtitle}
}
