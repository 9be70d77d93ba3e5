package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content at path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteUnit lays out a minimal episode unit: a descriptor document plus a
// quality folder holding the audio and video assets.
func WriteUnit(t testing.TB, unitPath, descriptor, quality string) {
	t.Helper()

	if descriptor != "" {
		WriteFile(t, filepath.Join(unitPath, "entry.json"), descriptor)
	}
	WriteFile(t, filepath.Join(unitPath, quality, "audio.m4s"), "audio")
	WriteFile(t, filepath.Join(unitPath, quality, "video.m4s"), "video")
}
