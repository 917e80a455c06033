package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/gcusage/internal/store"
)

func writeTelemetry(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "telemetry.log")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_OffsetsSeqAcrossFiles(t *testing.T) {
	a := writeTelemetry(t, t.TempDir(), tokenBlock(
		`{"attributes":{"session.id":"s","type":"input"},"time":1000,"asInt":1}`,
		`{"attributes":{"session.id":"s","type":"input"},"time":1000,"asInt":2}`,
	))
	b := writeTelemetry(t, t.TempDir(), tokenBlock(
		`{"attributes":{"session.id":"s","type":"input"},"time":1000,"asInt":3}`,
	)+`{"broken":`)

	res, err := Load([]string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 2 || len(res.Points) != 3 {
		t.Fatalf("TotalFiles=%d points=%d, want 2 and 3", res.TotalFiles, len(res.Points))
	}
	for i, p := range res.Points {
		if p.Seq != int64(i) {
			t.Errorf("point %d Seq = %d", i, p.Seq)
		}
	}
	// The later file wins the equal-timestamp tie.
	if got := BuildSessionSummaries(res.Points)[0].Input; got != 3 {
		t.Errorf("Input = %v, want 3", got)
	}
}

func TestLoad_MissingFileIsError(t *testing.T) {
	if _, err := Load([]string{filepath.Join(t.TempDir(), "nope.log")}); err == nil {
		t.Error("expected an error for an unreadable log")
	}
}

func TestLoadWithCache(t *testing.T) {
	cache, err := store.Open(filepath.Join(t.TempDir(), "points.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	path := writeTelemetry(t, t.TempDir(), tokenBlock(
		`{"attributes":{"session.id":"s","model":"pro","type":"input"},"time":1000,"asInt":4}`,
		`{"attributes":{"session.id":"s"},"asInt":9}`,
	))

	first, err := LoadWithCache([]string{path}, cache)
	if err != nil {
		t.Fatal(err)
	}
	if first.Reparsed != 1 || first.CacheHits != 0 {
		t.Errorf("first load: reparsed=%d hits=%d, want 1/0", first.Reparsed, first.CacheHits)
	}

	second, err := LoadWithCache([]string{path}, cache)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheHits != 1 || second.Reparsed != 0 {
		t.Errorf("second load: reparsed=%d hits=%d, want 0/1", second.Reparsed, second.CacheHits)
	}
	if len(second.Points) != 1 || second.Points[0] != first.Points[0] {
		t.Errorf("cached points = %+v, want %+v", second.Points, first.Points)
	}
	if second.UnusablePoints != 1 || second.Segments != 1 {
		t.Errorf("cached stats: segments=%d unusable=%d, want 1/1", second.Segments, second.UnusablePoints)
	}

	// Growing the file invalidates the entry.
	writeTelemetry(t, filepath.Dir(path), tokenBlock(
		`{"attributes":{"session.id":"s","model":"pro","type":"input"},"time":1000,"asInt":4}`,
		`{"attributes":{"session.id":"s","model":"pro","type":"input"},"time":2000,"asInt":6}`,
	))
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	third, err := LoadWithCache([]string{path}, cache)
	if err != nil {
		t.Fatal(err)
	}
	if third.Reparsed != 1 || len(third.Points) != 2 {
		t.Errorf("third load: reparsed=%d points=%d, want 1/2", third.Reparsed, len(third.Points))
	}
}
