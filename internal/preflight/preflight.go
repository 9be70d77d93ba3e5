package preflight

import (
	"fmt"
	"log/slog"
	"os/exec"

	"golang.org/x/sys/unix"

	"bilimux/internal/config"
	"bilimux/internal/fileutil"
	"bilimux/internal/logging"
	"bilimux/internal/services"
)

// minFreeBytes is the free-space floor below which a warning is raised.
// Copied assets plus the muxed container roughly double a unit's footprint.
const minFreeBytes = 1 << 30

// Severity ranks a check result.
type Severity string

const (
	SeverityOK   Severity = "ok"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

// Check is a single environment verification.
type Check struct {
	Name     string
	Severity Severity
	Detail   string
}

// Result aggregates all checks for one run.
type Result struct {
	Checks []Check
}

// Fatal reports whether any check failed outright. Warnings let the run
// proceed.
func (r Result) Fatal() bool {
	for _, check := range r.Checks {
		if check.Severity == SeverityFail {
			return true
		}
	}
	return false
}

// Run verifies the environment before processing starts: the source tree
// must be readable and the output directory writable; a missing ffmpeg or a
// nearly full output volume only warns, since scanning and subtitle work
// remain useful without them.
func Run(cfg *config.Config, logger *slog.Logger) Result {
	log := logging.NewComponentLogger(logger, "preflight")
	var result Result

	result.Checks = append(result.Checks, checkSourceReadable(cfg.Paths.SourceDir))
	result.Checks = append(result.Checks, checkOutputWritable(cfg.Paths.OutputDir))
	result.Checks = append(result.Checks, checkFFmpeg(cfg.Assembly.FFmpegBinary))
	result.Checks = append(result.Checks, checkFreeSpace(cfg.Paths.OutputDir))

	for _, check := range result.Checks {
		switch check.Severity {
		case SeverityFail:
			log.Error("preflight check failed",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail),
			)
		case SeverityWarn:
			log.Warn("preflight check warning",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail),
			)
		default:
			log.Debug("preflight check passed", logging.String("check", check.Name))
		}
	}
	return result
}

// Error converts a fatal result into a single wrapped error for the caller.
func (r Result) Error() error {
	for _, check := range r.Checks {
		if check.Severity == SeverityFail {
			return services.Wrap(services.ErrConfiguration, "preflight", check.Name, check.Detail, nil)
		}
	}
	return nil
}

func checkSourceReadable(dir string) Check {
	check := Check{Name: "source directory", Severity: SeverityOK, Detail: dir}
	if !fileutil.DirExists(dir) {
		check.Severity = SeverityFail
		check.Detail = fmt.Sprintf("%s does not exist", dir)
		return check
	}
	if err := unix.Access(dir, unix.R_OK|unix.X_OK); err != nil {
		check.Severity = SeverityFail
		check.Detail = fmt.Sprintf("%s is not readable: %v", dir, err)
	}
	return check
}

func checkOutputWritable(dir string) Check {
	check := Check{Name: "output directory", Severity: SeverityOK, Detail: dir}
	if err := fileutil.EnsureDir(dir); err != nil {
		check.Severity = SeverityFail
		check.Detail = fmt.Sprintf("cannot create %s: %v", dir, err)
		return check
	}
	if err := unix.Access(dir, unix.W_OK); err != nil {
		check.Severity = SeverityFail
		check.Detail = fmt.Sprintf("%s is not writable: %v", dir, err)
	}
	return check
}

func checkFFmpeg(binary string) Check {
	check := Check{Name: "ffmpeg binary", Severity: SeverityOK}
	path, err := exec.LookPath(binary)
	if err != nil {
		check.Severity = SeverityWarn
		check.Detail = fmt.Sprintf("%s not found in PATH, container assembly will fail", binary)
		return check
	}
	check.Detail = path
	return check
}

func checkFreeSpace(dir string) Check {
	check := Check{Name: "free space", Severity: SeverityOK}
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		check.Severity = SeverityWarn
		check.Detail = fmt.Sprintf("cannot stat filesystem at %s: %v", dir, err)
		return check
	}
	free := stat.Bavail * uint64(stat.Bsize)
	check.Detail = fmt.Sprintf("%.1f GiB available", float64(free)/(1<<30))
	if free < minFreeBytes {
		check.Severity = SeverityWarn
	}
	return check
}
