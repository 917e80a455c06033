// Package pipeline turns parsed telemetry points into session and daily reports.
package pipeline

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/theirongolddev/gcusage/internal/model"
)

// FilterPoints keeps points whose model and type equal the given filters.
// An empty filter matches everything.
func FilterPoints(points []model.MetricPoint, modelFilter, typeFilter string) []model.MetricPoint {
	if modelFilter == "" && typeFilter == "" {
		return points
	}
	return lo.Filter(points, func(p model.MetricPoint, _ int) bool {
		if modelFilter != "" && p.Model != modelFilter {
			return false
		}
		if typeFilter != "" && p.Type != typeFilter {
			return false
		}
		return true
	})
}

type sessionAccumulator struct {
	startMs int64
	models  *model.ModelSet
	last    map[string]model.MetricPoint
	keys    []string // (model, type) keys in first-seen order
}

// BuildSessionSummaries groups points by session and keeps, per
// (model, type), only the chronologically last value. Points without a
// session id are dropped.
//
// Points are processed in (timestamp, Seq) order, so on equal timestamps
// the point extracted later wins and the result does not depend on the
// order of the input slice. Summaries are sorted by start time, then id.
func BuildSessionSummaries(points []model.MetricPoint) []model.SessionSummary {
	ordered := make([]model.MetricPoint, len(points))
	copy(ordered, points)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].TimestampMs != ordered[j].TimestampMs {
			return ordered[i].TimestampMs < ordered[j].TimestampMs
		}
		return ordered[i].Seq < ordered[j].Seq
	})

	sessions := make(map[string]*sessionAccumulator)
	for _, p := range ordered {
		if !p.HasSession() {
			continue
		}

		acc, ok := sessions[p.SessionID]
		if !ok {
			acc = &sessionAccumulator{
				startMs: p.TimestampMs,
				models:  model.NewModelSet(),
				last:    make(map[string]model.MetricPoint),
			}
			sessions[p.SessionID] = acc
		}

		if p.TimestampMs < acc.startMs {
			acc.startMs = p.TimestampMs
		}
		acc.models.Add(p.Model)

		key := p.Model + "\x00" + p.Type
		prev, seen := acc.last[key]
		if !seen {
			acc.keys = append(acc.keys, key)
		}
		if !seen || p.TimestampMs >= prev.TimestampMs {
			acc.last[key] = p
		}
	}

	summaries := make([]model.SessionSummary, 0, len(sessions))
	for id, acc := range sessions {
		s := model.SessionSummary{
			SessionID:      id,
			SessionStartMs: acc.startMs,
			Models:         acc.models,
		}
		for _, key := range acc.keys {
			p := acc.last[key]
			s.AddType(p.Type, p.Value)
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].SessionStartMs != summaries[j].SessionStartMs {
			return summaries[i].SessionStartMs < summaries[j].SessionStartMs
		}
		return summaries[i].SessionID < summaries[j].SessionID
	})

	return summaries
}

// FilterSessionsByRange keeps sessions whose start lies inside r (inclusive).
func FilterSessionsByRange(summaries []model.SessionSummary, r model.Range) []model.SessionSummary {
	return lo.Filter(summaries, func(s model.SessionSummary, _ int) bool {
		return r.ContainsMs(s.SessionStartMs)
	})
}

// ToSessionTotals converts a summary into a session report row.
func ToSessionTotals(s model.SessionSummary, loc *time.Location) model.SessionTotals {
	return model.SessionTotals{
		Date:      DateKey(s.SessionStartMs, loc),
		SessionID: s.SessionID,
		Models:    s.Models,
		Totals:    s.Totals,
	}
}

// AggregateSessionsToDay rolls session summaries up into calendar days.
// Each session counts once, on the day it started. Rows are sorted by date.
func AggregateSessionsToDay(summaries []model.SessionSummary, loc *time.Location) []model.DailyTotals {
	dayMap := make(map[string]*model.DailyTotals)

	for _, s := range summaries {
		dayKey := DateKey(s.SessionStartMs, loc)
		row, ok := dayMap[dayKey]
		if !ok {
			row = &model.DailyTotals{Date: dayKey, Models: model.NewModelSet()}
			dayMap[dayKey] = row
		}
		row.Models.Merge(s.Models)
		row.Add(s.Totals)
	}

	days := make([]model.DailyTotals, 0, len(dayMap))
	for _, row := range dayMap {
		days = append(days, *row)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})

	return days
}

// DateKey formats an epoch-millisecond timestamp as YYYY-MM-DD in loc.
func DateKey(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format("2006-01-02")
}
