package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"bilimux/internal/assembler"
	"bilimux/internal/discovery"
	"bilimux/internal/fileutil"
	"bilimux/internal/hwaccel"
	"bilimux/internal/logging"
	"bilimux/internal/mux"
	"bilimux/internal/preflight"
	"bilimux/internal/subtitles"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var seasonFlag int

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Scan the source tree and assemble every episode unit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			if result := preflight.Run(cfg, logger); result.Fatal() {
				return result.Error()
			}

			interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
			season, err := resolveSeason(seasonFlag, cfg.Assembly.Season, interactive, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if err := fileutil.EnsureDir(cfg.Paths.OutputDir); err != nil {
				return fmt.Errorf("prepare output directory: %w", err)
			}
			lock := flock.New(filepath.Join(cfg.Paths.OutputDir, "bilimux.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another bilimux run is already processing %s", cfg.Paths.OutputDir)
			}
			defer func() { _ = lock.Unlock() }()

			runLogger := logger.With(logging.String("run_id", uuid.NewString()))
			runCtx := cmd.Context()

			profile := hwaccel.NewProber(runLogger).Detect(runCtx)

			walker := discovery.NewWalker(discovery.NewClassifier(cfg.Layout, runLogger), runLogger)
			units, err := walker.Walk(cfg.Paths.SourceDir, cfg.Layout.MaxScanDepth)
			if err != nil {
				return fmt.Errorf("scan source tree: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(units) == 0 {
				fmt.Fprintf(out, "No episode units found under %s\n", cfg.Paths.SourceDir)
				return nil
			}

			fetcher := subtitles.NewHTTPFetcher(cfg.DownloadTimeout())
			resolver := subtitles.NewResolver(cfg.Layout, cfg.Paths.OutputDir, fetcher, runLogger)
			muxer := mux.NewMuxer(cfg.Assembly.FFmpegBinary, runLogger)
			asm := assembler.New(cfg, season, resolver, muxer, profile, runLogger)

			succeeded, failed := 0, 0
			for _, unit := range units {
				result := asm.Process(runCtx, unit)
				if result.Success() {
					succeeded++
				} else {
					failed++
				}
				fmt.Fprintln(out, formatUnitStatus(result))
			}

			fmt.Fprintf(out, "\nProcessed %d unit(s): %d succeeded, %d failed\n",
				len(units), succeeded, failed)
			if failed > 0 {
				return fmt.Errorf("%d unit(s) failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&seasonFlag, "season", 0, "Season number (1-99); overrides the configured value")
	return cmd
}

func formatUnitStatus(result assembler.Result) string {
	status := "ok"
	detail := result.Media.ContainerPath
	switch {
	case !result.Success():
		status = "failed"
		detail = firstFailure(result)
	case result.SourceStage.Status == assembler.StatusSkipped:
		status = "partial"
		detail = result.SourceStage.Detail
	case result.MuxStage.Status == assembler.StatusSkipped:
		detail = result.MuxStage.Detail
	}
	return fmt.Sprintf("[%s] %s (%s)", status, result.BaseName, detail)
}

func firstFailure(result assembler.Result) string {
	for _, outcome := range []assembler.Outcome{
		result.DescriptorStage, result.SubtitleStage, result.SourceStage,
		result.CopyStage, result.MuxStage, result.SidecarStage,
	} {
		if outcome.Status == assembler.StatusFailed {
			if outcome.Err != nil {
				return outcome.Err.Error()
			}
			return outcome.Detail
		}
	}
	return "unknown failure"
}
