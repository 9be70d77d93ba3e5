package main

import (
	"strings"
	"testing"
)

func TestResolveSeasonFlagWins(t *testing.T) {
	season, err := resolveSeason(4, 2, false, strings.NewReader(""), &strings.Builder{})
	if err != nil {
		t.Fatalf("resolveSeason: %v", err)
	}
	if season != 4 {
		t.Fatalf("season %d, want 4", season)
	}
}

func TestResolveSeasonFlagOutOfRange(t *testing.T) {
	if _, err := resolveSeason(100, 0, false, strings.NewReader(""), &strings.Builder{}); err == nil {
		t.Fatal("expected range error")
	}
}

func TestResolveSeasonUsesConfiguredValue(t *testing.T) {
	season, err := resolveSeason(0, 3, false, strings.NewReader(""), &strings.Builder{})
	if err != nil {
		t.Fatalf("resolveSeason: %v", err)
	}
	if season != 3 {
		t.Fatalf("season %d, want 3", season)
	}
}

func TestResolveSeasonNonInteractiveWithoutValueFails(t *testing.T) {
	if _, err := resolveSeason(0, 0, false, strings.NewReader("2\n"), &strings.Builder{}); err == nil {
		t.Fatal("expected error without terminal")
	}
}

func TestResolveSeasonPromptRetriesUntilValid(t *testing.T) {
	var out strings.Builder
	season, err := resolveSeason(0, 0, true, strings.NewReader("abc\n0\n7\n"), &out)
	if err != nil {
		t.Fatalf("resolveSeason: %v", err)
	}
	if season != 7 {
		t.Fatalf("season %d, want 7", season)
	}
	if !strings.Contains(out.String(), "whole number") {
		t.Fatalf("expected retry hint in prompt output:\n%s", out.String())
	}
}

func TestResolveSeasonPromptEOF(t *testing.T) {
	if _, err := resolveSeason(0, 0, true, strings.NewReader(""), &strings.Builder{}); err == nil {
		t.Fatal("expected error on EOF")
	}
}
