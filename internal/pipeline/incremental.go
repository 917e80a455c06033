package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/gcusage/internal/source"
	"github.com/theirongolddev/gcusage/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHits int
	Reparsed  int
}

// LoadWithCache loads points for each log, reusing the cached parse when
// the file's mtime and size are unchanged and reparsing (and re-caching)
// otherwise.
func LoadWithCache(paths []string, cache *store.Cache) (*CachedLoadResult, error) {
	result := &CachedLoadResult{LoadResult: LoadResult{TotalFiles: len(paths)}}
	if len(paths) == 0 {
		return result, nil
	}

	tracked, err := cache.GetTrackedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		mtime, size := info.ModTime().UnixNano(), info.Size()

		if cached, ok := tracked[path]; ok && cached.Matches(mtime, size) {
			points, err := cache.LoadPoints(path)
			if err != nil {
				return nil, fmt.Errorf("loading cached points: %w", err)
			}
			log.Debug("cache hit", "path", path, "points", len(points))
			result.CacheHits++
			result.Segments += cached.Segments
			result.MalformedSegments += cached.MalformedSegments
			result.UnusablePoints += cached.UnusablePoints
			result.add(points)
			continue
		}

		pr := source.ParseFile(path)
		if pr.Err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, pr.Err)
		}
		log.Debug("cache miss, parsed telemetry log",
			"path", path,
			"segments", pr.Segments,
			"malformed", pr.MalformedSegments,
			"points", len(pr.Points),
		)
		result.Reparsed++
		result.addStats(pr)
		result.add(pr.Points)

		fi := store.FileInfo{
			MtimeNs:           mtime,
			SizeBytes:         size,
			Segments:          pr.Segments,
			MalformedSegments: pr.MalformedSegments,
			UnusablePoints:    pr.UnusablePoints,
		}
		if err := cache.SavePoints(path, fi, pr.Points); err != nil {
			log.Debug("cache save failed", "path", path, "err", err)
		}
	}

	return result, nil
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "gcusage")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "gcusage")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "points.db")
}
