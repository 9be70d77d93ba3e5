package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bilimux/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to point source_dir at the downloader's output before running bilimux.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			flagValue := ""
			if ctx.configFlag != nil {
				flagValue = *ctx.configFlag
			}
			cfg, path, exists, err := config.Load(flagValue)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Configuration file: %s\n\n", path)
			} else {
				fmt.Fprintf(out, "Configuration file: %s (not present, defaults in effect)\n\n", path)
			}
			fmt.Fprintf(out, "source_dir = %s\n", cfg.Paths.SourceDir)
			fmt.Fprintf(out, "output_dir = %s\n", cfg.Paths.OutputDir)
			fmt.Fprintf(out, "log_dir = %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "descriptor_name = %s\n", cfg.Layout.DescriptorName)
			fmt.Fprintf(out, "subtitle_dir_name = %s\n", cfg.Layout.SubtitleDirName)
			fmt.Fprintf(out, "max_scan_depth = %d\n", cfg.Layout.MaxScanDepth)
			fmt.Fprintf(out, "ffmpeg_binary = %s\n", cfg.Assembly.FFmpegBinary)
			fmt.Fprintf(out, "season = %d\n", cfg.Assembly.Season)
			fmt.Fprintf(out, "log_format = %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "log_level = %s\n", cfg.Logging.Level)
			return nil
		},
	}
	return cmd
}
