package pipeline

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/gcusage/internal/model"
	"github.com/theirongolddev/gcusage/internal/source"
)

// LoadResult holds the output of the full data loading pipeline.
type LoadResult struct {
	Points            []model.MetricPoint
	TotalFiles        int
	Segments          int
	MalformedSegments int
	UnusablePoints    int

	nextSeq int64
}

// add appends one file's points, shifting their Seq past every point
// already loaded so ordering stays unique across files.
func (r *LoadResult) add(points []model.MetricPoint) {
	base := r.nextSeq
	for _, p := range points {
		p.Seq += base
		if p.Seq >= r.nextSeq {
			r.nextSeq = p.Seq + 1
		}
		r.Points = append(r.Points, p)
	}
}

func (r *LoadResult) addStats(pr source.ParseResult) {
	r.Segments += pr.Segments
	r.MalformedSegments += pr.MalformedSegments
	r.UnusablePoints += pr.UnusablePoints
}

// Load parses every telemetry log in paths, in order. Malformed content is
// skipped; a file that cannot be read is an error.
func Load(paths []string) (*LoadResult, error) {
	result := &LoadResult{TotalFiles: len(paths)}

	for _, path := range paths {
		pr := source.ParseFile(path)
		if pr.Err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, pr.Err)
		}
		log.Debug("parsed telemetry log",
			"path", path,
			"segments", pr.Segments,
			"malformed", pr.MalformedSegments,
			"points", len(pr.Points),
			"unusable", pr.UnusablePoints,
		)
		result.addStats(pr)
		result.add(pr.Points)
	}

	return result, nil
}
