package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxSeason = 99

// resolveSeason decides the season number for a run. Precedence: the
// --season flag, then the configured value, then an interactive prompt. A
// zero season with no terminal attached is an error rather than a silent
// guess.
func resolveSeason(flagValue, configured int, interactive bool, in io.Reader, out io.Writer) (int, error) {
	if flagValue != 0 {
		if flagValue < 1 || flagValue > maxSeason {
			return 0, fmt.Errorf("season %d out of range (1-%d)", flagValue, maxSeason)
		}
		return flagValue, nil
	}
	if configured != 0 {
		return configured, nil
	}
	if !interactive {
		return 0, fmt.Errorf("no season configured; pass --season or set assembly.season in the config file")
	}
	return promptSeason(in, out)
}

func promptSeason(in io.Reader, out io.Writer) (int, error) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "Season number (1-99): ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("read season: %w", err)
		}
		value, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && value >= 1 && value <= maxSeason {
			return value, nil
		}
		fmt.Fprintln(out, "Enter a whole number between 1 and 99.")
		if err != nil {
			return 0, fmt.Errorf("read season: %w", err)
		}
	}
}
