package assembler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bilimux/internal/assembler"
	"bilimux/internal/discovery"
	"bilimux/internal/hwaccel"
	"bilimux/internal/logging"
	"bilimux/internal/mux"
	"bilimux/internal/subtitles"
	"bilimux/internal/testsupport"
)

type fakeResolver struct {
	tracks map[string]subtitles.Track
	calls  int
	urls   []string
}

func (f *fakeResolver) Resolve(_ context.Context, _ string, subtitleURL, _ string) map[string]subtitles.Track {
	f.calls++
	f.urls = append(f.urls, subtitleURL)
	return f.tracks
}

type fakeMuxer struct {
	calls    int
	err      error
	requests []mux.Request
}

func (f *fakeMuxer) Mux(_ context.Context, req mux.Request) error {
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(req.OutputPath, []byte("mkv"), 0o644)
}

func writeUnit(t *testing.T, descriptor string) string {
	t.Helper()
	unit := t.TempDir()
	testsupport.WriteUnit(t, unit, descriptor, "112")
	return unit
}

func newAssembler(t *testing.T, resolver assembler.SubtitleResolver, muxer assembler.ContainerMuxer) (*assembler.Assembler, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	return assembler.New(cfg, 1, resolver, muxer, hwaccel.None(), logging.NewNop()), cfg.Paths.OutputDir
}

const demoDescriptor = `{
	"title": "Demo",
	"ep": {"page": "03", "episode_id": 424242},
	"danmakuSubtitleReply": {"subtitles": [{"key": "en", "url": "https://example.com/en.json"}]},
	"prefered_video_quality": 112
}`

func TestProcessAssemblesCompleteUnit(t *testing.T) {
	unit := writeUnit(t, demoDescriptor)
	resolver := &fakeResolver{tracks: map[string]subtitles.Track{
		"en": {Language: "en", Format: subtitles.FormatSRT, Path: "/tmp/Demo - S01E03.en.srt"},
	}}
	muxer := &fakeMuxer{}
	asm, outputDir := newAssembler(t, resolver, muxer)

	result := asm.Process(context.Background(), discovery.Unit{Path: unit})

	if !result.Success() {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.BaseName != "Demo - S01E03" {
		t.Fatalf("base name %q", result.BaseName)
	}
	if resolver.urls[0] != "https://example.com/en.json" {
		t.Fatalf("resolver got url %q", resolver.urls[0])
	}
	for _, name := range []string{
		"Demo - S01E03_audio.m4s",
		"Demo - S01E03_video.m4s",
		"Demo - S01E03.mkv",
		"Demo - S01E03_metadata.txt",
	} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("expected artifact %s: %v", name, err)
		}
	}
	if muxer.calls != 1 {
		t.Fatalf("mux calls %d", muxer.calls)
	}
	req := muxer.requests[0]
	if req.AudioPath != filepath.Join(outputDir, "Demo - S01E03_audio.m4s") {
		t.Errorf("mux audio path %q", req.AudioPath)
	}
	if len(req.Subtitles) != 1 {
		t.Errorf("mux subtitle tracks %v", req.Subtitles)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	unit := writeUnit(t, demoDescriptor)
	muxer := &fakeMuxer{}
	asm, outputDir := newAssembler(t, &fakeResolver{}, muxer)

	first := asm.Process(context.Background(), discovery.Unit{Path: unit})
	sidecar := filepath.Join(outputDir, "Demo - S01E03_metadata.txt")
	before, err := os.ReadFile(sidecar)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}

	second := asm.Process(context.Background(), discovery.Unit{Path: unit})
	after, err := os.ReadFile(sidecar)
	if err != nil {
		t.Fatalf("reread sidecar: %v", err)
	}

	if !first.Success() || !second.Success() {
		t.Fatalf("both runs should succeed: %+v %+v", first, second)
	}
	if muxer.calls != 1 {
		t.Fatalf("container must not be reassembled, mux calls %d", muxer.calls)
	}
	if second.MuxStage.Status != assembler.StatusSkipped {
		t.Fatalf("second mux stage %+v", second.MuxStage)
	}
	if string(before) != string(after) {
		t.Fatalf("sidecar changed between runs:\n%s\n---\n%s", before, after)
	}
}

func TestProcessSidecarContent(t *testing.T) {
	unit := writeUnit(t, demoDescriptor)
	resolver := &fakeResolver{tracks: map[string]subtitles.Track{
		"vi": {Language: "vi", Format: subtitles.FormatASS, Path: "/tmp/x.vi.ass"},
		"en": {Language: "en", Format: subtitles.FormatSRT, Path: "/tmp/x.en.srt"},
	}}
	asm, outputDir := newAssembler(t, resolver, &fakeMuxer{})

	asm.Process(context.Background(), discovery.Unit{Path: unit})

	data, err := os.ReadFile(filepath.Join(outputDir, "Demo - S01E03_metadata.txt"))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"Title: Demo\n",
		"Season: 1\n",
		"Episode: 03\n",
		"Subtitle [en]: /tmp/x.en.srt\n",
		"Subtitle [vi]: /tmp/x.vi.ass\n",
		"Source: " + unit + "\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("sidecar missing %q:\n%s", want, content)
		}
	}
	if strings.Index(content, "Subtitle [en]") > strings.Index(content, "Subtitle [vi]") {
		t.Errorf("subtitle lines out of order:\n%s", content)
	}
}

func TestProcessMissingMediaSkipsMediaStagesOnly(t *testing.T) {
	unit := t.TempDir()
	descriptor := `{"title": "Demo", "ep": {"page": "03"},
		"danmakuSubtitleReply": {"subtitles": [{"key": "en", "url": "https://example.com/en.json"}]}}`
	testsupport.WriteFile(t, filepath.Join(unit, "entry.json"), descriptor)
	resolver := &fakeResolver{tracks: map[string]subtitles.Track{
		"en": {Language: "en", Format: subtitles.FormatSRT, Path: "/tmp/x.en.srt"},
	}}
	muxer := &fakeMuxer{}
	asm, _ := newAssembler(t, resolver, muxer)

	result := asm.Process(context.Background(), discovery.Unit{Path: unit})

	if resolver.calls != 1 {
		t.Fatal("subtitles must resolve even without media")
	}
	if result.SubtitleStage.Status != assembler.StatusCompleted {
		t.Errorf("subtitle stage %+v", result.SubtitleStage)
	}
	for name, stage := range map[string]assembler.Outcome{
		"source":  result.SourceStage,
		"copy":    result.CopyStage,
		"mux":     result.MuxStage,
		"sidecar": result.SidecarStage,
	} {
		if stage.Status != assembler.StatusSkipped {
			t.Errorf("%s stage should be skipped, got %+v", name, stage)
		}
	}
	if muxer.calls != 0 {
		t.Fatalf("mux must not run, got %d calls", muxer.calls)
	}
	if !result.Success() {
		t.Fatalf("skips are not failures: %+v", result)
	}
}

func TestProcessMuxFailureStillWritesSidecar(t *testing.T) {
	unit := writeUnit(t, demoDescriptor)
	muxer := &fakeMuxer{err: errors.New("exit status 1")}
	asm, outputDir := newAssembler(t, &fakeResolver{}, muxer)

	result := asm.Process(context.Background(), discovery.Unit{Path: unit})

	if result.Success() {
		t.Fatal("mux failure must fail the unit")
	}
	if result.MuxStage.Status != assembler.StatusFailed {
		t.Fatalf("mux stage %+v", result.MuxStage)
	}
	if result.SidecarStage.Status != assembler.StatusCompleted {
		t.Fatalf("sidecar stage %+v", result.SidecarStage)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "Demo - S01E03_metadata.txt")); err != nil {
		t.Fatalf("sidecar should exist: %v", err)
	}
}

func TestProcessMissingDescriptorUsesFolderName(t *testing.T) {
	unit := writeUnit(t, "")
	asm, _ := newAssembler(t, &fakeResolver{}, &fakeMuxer{})

	result := asm.Process(context.Background(), discovery.Unit{Path: unit})

	if result.Descriptor.Title != filepath.Base(unit) {
		t.Fatalf("title %q, want folder name %q", result.Descriptor.Title, filepath.Base(unit))
	}
	// No descriptor means no declared quality folder, so the media stages
	// stop even though a folder with a complete pair exists.
	if result.SourceStage.Status != assembler.StatusSkipped {
		t.Fatalf("source stage %+v", result.SourceStage)
	}
}

func TestProcessUndeclaredQualityNeverGuesses(t *testing.T) {
	unit := writeUnit(t, `{"title": "Demo", "ep": {"page": "03"}}`)
	muxer := &fakeMuxer{}
	asm, _ := newAssembler(t, &fakeResolver{}, muxer)

	result := asm.Process(context.Background(), discovery.Unit{Path: unit})

	if result.SourceStage.Status != assembler.StatusSkipped {
		t.Fatalf("source stage %+v, want skipped despite an on-disk media pair", result.SourceStage)
	}
	for name, stage := range map[string]assembler.Outcome{
		"copy":    result.CopyStage,
		"mux":     result.MuxStage,
		"sidecar": result.SidecarStage,
	} {
		if stage.Status != assembler.StatusSkipped {
			t.Errorf("%s stage should be skipped, got %+v", name, stage)
		}
	}
	if muxer.calls != 0 {
		t.Fatalf("mux must not run for an undeclared source, got %d calls", muxer.calls)
	}
	if !result.Success() {
		t.Fatalf("a unit with nothing to assemble is not a failure: %+v", result)
	}
}

func TestProcessDeclaredQualityWithoutPairSkips(t *testing.T) {
	unit := t.TempDir()
	descriptor := `{"title": "Demo", "ep": {"page": "03"}, "prefered_video_quality": 112}`
	testsupport.WriteFile(t, filepath.Join(unit, "entry.json"), descriptor)
	testsupport.WriteFile(t, filepath.Join(unit, "112", "audio.m4s"), "audio")
	muxer := &fakeMuxer{}
	asm, _ := newAssembler(t, &fakeResolver{}, muxer)

	result := asm.Process(context.Background(), discovery.Unit{Path: unit})

	if result.SourceStage.Status != assembler.StatusSkipped {
		t.Fatalf("source stage %+v, want skipped for an incomplete pair", result.SourceStage)
	}
	if muxer.calls != 0 {
		t.Fatalf("mux must not run, got %d calls", muxer.calls)
	}
}
