// Package source locates and parses the Gemini CLI telemetry log.
package source

import (
	"os"

	"github.com/theirongolddev/gcusage/internal/model"
)

// ParseResult holds the output of parsing one telemetry log.
type ParseResult struct {
	Points            []model.MetricPoint
	Segments          int
	MalformedSegments int
	UnusablePoints    int
	Err               error
}

// ParseLog extracts canonical token-usage points from raw log content.
// Malformed segments and unusable data points are skipped and counted;
// content problems never produce an error.
//
// Pipeline:
//   - SplitObjects    → balanced {...} spans
//   - DecodeSegment   → JSON tree (bad spans skipped)
//   - ExtractLog      → raw target data points, numbered in canonical order
//   - BuildPoint      → MetricPoint (points without value/timestamp skipped)
func ParseLog(data []byte) ParseResult {
	ex := ExtractLog(data)
	res := ParseResult{
		Segments:          ex.Segments,
		MalformedSegments: ex.MalformedSegments,
		Points:            make([]model.MetricPoint, 0, len(ex.Points)),
	}

	for _, rp := range ex.Points {
		p, ok := BuildPoint(rp.Data)
		if !ok {
			res.UnusablePoints++
			continue
		}
		p.Seq = rp.Seq
		res.Points = append(res.Points, p)
	}

	return res
}

// ParseFile reads the log at path and parses it. Only I/O failures set Err.
func ParseFile(path string) ParseResult {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from log discovery
	if err != nil {
		return ParseResult{Err: err}
	}
	return ParseLog(data)
}
