package hwaccel

import (
	"context"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"bilimux/internal/logging"
)

// Vendor identifies the detected acceleration vendor.
type Vendor string

const (
	VendorNone   Vendor = "none"
	VendorNvidia Vendor = "nvidia"
	VendorAMD    Vendor = "amd"
	VendorIntel  Vendor = "intel"
)

// Profile is the immutable capability descriptor computed once per run and
// shared read-only by every subsequent mux invocation.
type Profile struct {
	Vendor    Vendor
	AccelFlag string
	// Encoder stays "copy": streams are always carried through unmodified.
	Encoder string
}

// Accelerated reports whether the profile names a usable acceleration flag.
func (p Profile) Accelerated() bool {
	return p.Vendor != VendorNone && p.AccelFlag != ""
}

// None is the profile used when no acceleration is available.
func None() Profile {
	return Profile{Vendor: VendorNone, Encoder: "copy"}
}

// probeTimeout bounds each vendor query.
const probeTimeout = 5 * time.Second

type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

type vendorCheck struct {
	vendor    Vendor
	accelFlag string
	command   string
	args      []string
	markers   []string
}

// Prober detects hardware acceleration support via platform query tools.
type Prober struct {
	run    commandRunner
	goos   string
	logger *slog.Logger
}

// NewProber constructs a prober for the current platform.
func NewProber(logger *slog.Logger) *Prober {
	return &Prober{
		run:    defaultCommandRunner,
		goos:   runtime.GOOS,
		logger: logging.NewComponentLogger(logger, "hwaccel"),
	}
}

// WithCommandRunner injects a query runner (used in tests).
func (p *Prober) WithCommandRunner(run commandRunner) {
	if p != nil && run != nil {
		p.run = run
	}
}

// WithPlatform overrides the detected operating system (used in tests).
func (p *Prober) WithPlatform(goos string) {
	if p != nil && goos != "" {
		p.goos = goos
	}
}

// Detect runs the vendor checks in fixed priority order: NVIDIA, then AMD,
// then Intel. The first query whose output contains a recognized marker wins
// and short-circuits the rest. Query failures (missing tool, timeout,
// non-zero exit) advance to the next vendor; striking out everywhere is not
// an error, just a capability of none.
func (p *Prober) Detect(ctx context.Context) Profile {
	for _, check := range p.checks() {
		queryCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		output, err := p.run(queryCtx, check.command, check.args...)
		cancel()
		if err != nil {
			p.logger.Debug("vendor query failed",
				logging.String("vendor", string(check.vendor)),
				logging.String("command", check.command),
				logging.Error(err),
			)
			continue
		}
		if containsAny(output, check.markers) {
			p.logger.Info("hardware acceleration detected",
				logging.String("vendor", string(check.vendor)),
				logging.String("hwaccel", check.accelFlag),
			)
			return Profile{Vendor: check.vendor, AccelFlag: check.accelFlag, Encoder: "copy"}
		}
	}
	p.logger.Info("no hardware acceleration found, using plain stream copy")
	return None()
}

func (p *Prober) checks() []vendorCheck {
	if p.goos == "windows" {
		wmic := []string{"path", "win32_VideoController", "get", "name"}
		return []vendorCheck{
			{VendorNvidia, "cuda", "nvidia-smi", []string{"-L"}, []string{"GPU"}},
			{VendorAMD, "amf", "wmic", wmic, []string{"AMD", "Radeon"}},
			{VendorIntel, "qsv", "wmic", wmic, []string{"Intel", "UHD", "HD Graphics"}},
		}
	}
	return []vendorCheck{
		{VendorNvidia, "cuda", "lspci", nil, []string{"NVIDIA"}},
		{VendorAMD, "amf", "lspci", nil, []string{"AMD", "Radeon"}},
		{VendorIntel, "qsv", "lspci", nil, []string{"Intel"}},
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
