package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/theirongolddev/gcusage/internal/source"
)

// ErrNoLog is returned when the telemetry log to compact does not exist.
var ErrNoLog = errors.New("telemetry log not found")

// CompactResult describes a compacted log.
type CompactResult struct {
	Data    []byte
	Kept    int // data points written
	Dropped int // superseded data points
	Skipped int // data points without a derivable timestamp
}

type retainedPoint struct {
	timestampMs int64
	raw         source.RawPoint
}

// Compact reduces a raw log to one data point per (session, model, type),
// the latest one, wrapped in a single target metric block. Retained data
// points are written byte for byte as they appeared, minus insignificant
// whitespace, so member order and numeric literals are unchanged. Points
// without a session id are keyed under source.NoSessionSentinel so they
// survive compaction.
func Compact(data []byte) (CompactResult, error) {
	ex := source.ExtractLogRaw(data)

	var res CompactResult
	latest := make(map[string]retainedPoint)

	for _, rp := range ex.Points {
		ts, ok := source.ReadTimestampMs(rp.Data)
		if !ok {
			res.Skipped++
			continue
		}

		attrs := source.ReadAttributes(rp.Data["attributes"])
		sessionID := source.SessionIDFrom(attrs)
		if sessionID == "" {
			sessionID = source.NoSessionSentinel
		}
		key := sessionID + "\x00" + attrOr(attrs, source.AttrModel) + "\x00" + attrOr(attrs, source.AttrType)

		// Seq increases through ex.Points, so >= lets the later point win ties.
		if prev, ok := latest[key]; !ok || ts >= prev.timestampMs {
			latest[key] = retainedPoint{timestampMs: ts, raw: rp}
		}
	}

	kept := lo.Values(latest)
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].timestampMs != kept[j].timestampMs {
			return kept[i].timestampMs < kept[j].timestampMs
		}
		return kept[i].raw.Seq < kept[j].raw.Seq
	})

	name, err := json.Marshal(source.TargetMetric)
	if err != nil {
		return CompactResult{}, fmt.Errorf("encoding compacted log: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(`{"descriptor":{"name":`)
	buf.Write(name)
	buf.WriteString(`},"dataPoints":[`)
	for i, raw := range lo.Map(kept, func(p retainedPoint, _ int) json.RawMessage { return p.raw.Bytes }) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := json.Compact(&buf, raw); err != nil {
			return CompactResult{}, fmt.Errorf("encoding compacted log: %w", err)
		}
	}
	buf.WriteString("]}")

	res.Data = buf.Bytes()
	res.Kept = len(kept)
	res.Dropped = len(ex.Points) - res.Skipped - res.Kept
	return res, nil
}

func attrOr(attrs map[string]string, key string) string {
	if v := attrs[key]; v != "" {
		return v
	}
	return source.UnknownAttribute
}

// TrimLog compacts the log at path in place. The sequence is copy to
// <path>.bak, read, compact, write, remove the backup; a failure before
// the write leaves the original untouched, a failure after it leaves a
// stale backup next to a complete replacement.
func TrimLog(path string) (CompactResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CompactResult{}, fmt.Errorf("%w: %s", ErrNoLog, path)
		}
		return CompactResult{}, err
	}
	if !info.Mode().IsRegular() {
		return CompactResult{}, fmt.Errorf("%w: %s is not a regular file", ErrNoLog, path)
	}

	backup := path + ".bak"
	if err := copyFile(path, backup, info.Mode().Perm()); err != nil {
		return CompactResult{}, fmt.Errorf("backing up log: %w", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from log discovery
	if err != nil {
		return CompactResult{}, fmt.Errorf("reading log: %w", err)
	}

	res, err := Compact(data)
	if err != nil {
		return CompactResult{}, err
	}

	if err := os.WriteFile(path, res.Data, info.Mode().Perm()); err != nil {
		return CompactResult{}, fmt.Errorf("writing compacted log: %w", err)
	}
	if err := os.Remove(backup); err != nil {
		log.Warn("could not remove backup", "path", backup, "err", err)
	}

	return res, nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // src is the log being compacted
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //nolint:gosec // dst sits next to src
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
