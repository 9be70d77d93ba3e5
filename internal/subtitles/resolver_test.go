package subtitles_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bilimux/internal/config"
	"bilimux/internal/logging"
	"bilimux/internal/subtitles"
)

const timedBody = `{"body":[{"from":0,"to":1,"content":"hi"}]}`

type stubFetcher struct {
	payload string
	err     error
	calls   int
}

func (s *stubFetcher) Fetch(_ context.Context, _, destPath string) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(destPath, []byte(s.payload), 0o644)
}

func newResolver(t *testing.T, fetcher subtitles.Fetcher) (*subtitles.Resolver, string) {
	t.Helper()
	cfg := config.Default()
	outputDir := filepath.Join(t.TempDir(), "out")
	return subtitles.NewResolver(cfg.Layout, outputDir, fetcher, logging.NewNop()), outputDir
}

func writeLocalSubtitle(t *testing.T, unitPath, name, body string) {
	t.Helper()
	dir := filepath.Join(unitPath, "vi")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write subtitle: %v", err)
	}
}

func TestResolveRemoteTimedJSON(t *testing.T) {
	fetcher := &stubFetcher{payload: timedBody}
	resolver, outputDir := newResolver(t, fetcher)

	tracks := resolver.Resolve(context.Background(), t.TempDir(), "https://example.com/sub.json?v=1", "Demo - S01E03")
	track, ok := tracks["en"]
	if !ok {
		t.Fatalf("expected en track, got %v", tracks)
	}
	if track.Format != subtitles.FormatSRT {
		t.Fatalf("expected converted SRT, got %+v", track)
	}
	wantPath := filepath.Join(outputDir, "Demo - S01E03.en.srt")
	if track.Path != wantPath {
		t.Fatalf("track path %q, want %q", track.Path, wantPath)
	}
	rawPath := filepath.Join(outputDir, "Demo - S01E03.en.json")
	if _, err := os.Stat(rawPath); err != nil {
		t.Fatalf("raw download should remain on disk: %v", err)
	}
}

func TestResolveRemoteIsIdempotent(t *testing.T) {
	fetcher := &stubFetcher{payload: timedBody}
	resolver, _ := newResolver(t, fetcher)
	unit := t.TempDir()

	resolver.Resolve(context.Background(), unit, "https://example.com/sub.json", "Demo - S01E03")
	resolver.Resolve(context.Background(), unit, "https://example.com/sub.json", "Demo - S01E03")
	if fetcher.calls != 1 {
		t.Fatalf("expected a single download across runs, got %d", fetcher.calls)
	}
}

func TestResolveRemoteDownloadFailureLeavesSlotEmpty(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	resolver, _ := newResolver(t, fetcher)

	tracks := resolver.Resolve(context.Background(), t.TempDir(), "https://example.com/sub.json", "Demo - S01E03")
	if _, ok := tracks["en"]; ok {
		t.Fatalf("failed download must not populate the language slot: %v", tracks)
	}
}

func TestResolveRemoteConversionFailureReturnsRawPath(t *testing.T) {
	fetcher := &stubFetcher{payload: `not json at all`}
	resolver, outputDir := newResolver(t, fetcher)

	tracks := resolver.Resolve(context.Background(), t.TempDir(), "https://example.com/sub.json", "Demo - S01E03")
	track, ok := tracks["en"]
	if !ok {
		t.Fatal("expected raw track despite conversion failure")
	}
	if track.Format != subtitles.FormatTimedJSON {
		t.Fatalf("expected raw JSON format, got %+v", track)
	}
	if track.Path != filepath.Join(outputDir, "Demo - S01E03.en.json") {
		t.Fatalf("unexpected raw path %q", track.Path)
	}
}

func TestResolveRemoteASSSkipsConversion(t *testing.T) {
	fetcher := &stubFetcher{payload: "[Script Info]"}
	resolver, outputDir := newResolver(t, fetcher)

	tracks := resolver.Resolve(context.Background(), t.TempDir(), "https://example.com/sub.ass", "Demo - S01E03")
	track := tracks["en"]
	if track.Format != subtitles.FormatASS {
		t.Fatalf("expected ASS passthrough, got %+v", track)
	}
	if track.Path != filepath.Join(outputDir, "Demo - S01E03.en.ass") {
		t.Fatalf("unexpected path %q", track.Path)
	}
}

func TestResolveLocalNativeOverridesConvertedJSON(t *testing.T) {
	resolver, outputDir := newResolver(t, &stubFetcher{})
	unit := t.TempDir()
	writeLocalSubtitle(t, unit, "a.json", timedBody)
	writeLocalSubtitle(t, unit, "b.ass", "[Script Info]")

	tracks := resolver.Resolve(context.Background(), unit, "", "Demo - S01E03")
	track, ok := tracks["vi"]
	if !ok {
		t.Fatal("expected vi track")
	}
	// Class order is JSON then native; the native file wins the slot even
	// though both were materialized on disk.
	if track.Format != subtitles.FormatASS {
		t.Fatalf("expected native format to win, got %+v", track)
	}
	for _, name := range []string{"Demo - S01E03.vi.json", "Demo - S01E03.vi.srt", "Demo - S01E03.vi.ass"} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("expected %s on disk: %v", name, err)
		}
	}
}

func TestResolveRemoteAndLocalUseDistinctLanguages(t *testing.T) {
	fetcher := &stubFetcher{payload: timedBody}
	resolver, _ := newResolver(t, fetcher)
	unit := t.TempDir()
	writeLocalSubtitle(t, unit, "local.json", timedBody)

	tracks := resolver.Resolve(context.Background(), unit, "https://example.com/sub.json", "Demo - S01E03")
	if len(tracks) != 2 {
		t.Fatalf("expected en and vi tracks, got %v", tracks)
	}
	if tracks["en"].Source != subtitles.SourceRemote {
		t.Errorf("en track source %v", tracks["en"].Source)
	}
	if tracks["vi"].Source != subtitles.SourceLocal {
		t.Errorf("vi track source %v", tracks["vi"].Source)
	}
}

func TestResolveMissingLocalFolderIsQuiet(t *testing.T) {
	resolver, _ := newResolver(t, &stubFetcher{})
	tracks := resolver.Resolve(context.Background(), t.TempDir(), "", "Demo - S01E03")
	if len(tracks) != 0 {
		t.Fatalf("expected no tracks, got %v", tracks)
	}
}
