package pipeline

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/theirongolddev/gcusage/internal/model"
)

// ReportOptions selects what BuildReport aggregates.
type ReportOptions struct {
	Period         model.Period
	PeriodProvided bool
	Since          time.Time // zero when not given
	Until          time.Time // zero when not given
	Model          string
	Type           string
	Now            time.Time      // defaults to time.Now()
	Location       *time.Location // defaults to time.Local
}

// Report is the aggregated output handed to the renderer or JSON emitter.
// Sessions is populated for the session period, Daily otherwise.
type Report struct {
	Period   model.Period
	Range    model.Range
	Daily    []model.DailyTotals
	Sessions []model.SessionTotals
}

// Empty reports whether there is no matching data.
func (r Report) Empty() bool {
	return len(r.Daily) == 0 && len(r.Sessions) == 0
}

// BuildReport filters, deduplicates and buckets points.
func BuildReport(points []model.MetricPoint, opts ReportOptions) Report {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(loc)

	period := opts.Period
	if period == "" {
		period = model.PeriodDay
	}

	rng := ResolveRange(period, opts.PeriodProvided, opts.Since, opts.Until, now)

	filtered := FilterPoints(points, opts.Model, opts.Type)
	summaries := FilterSessionsByRange(BuildSessionSummaries(filtered), rng)

	report := Report{Period: period, Range: rng}
	if period == model.PeriodSession {
		report.Sessions = lo.Map(summaries, func(s model.SessionSummary, _ int) model.SessionTotals {
			return ToSessionTotals(s, loc)
		})
		return report
	}

	report.Daily = AggregateSessionsToDay(summaries, loc)
	return report
}

// DailyRow is the JSON form of a daily report row.
type DailyRow struct {
	Date    string   `json:"date"`
	Models  []string `json:"models"`
	Input   int64    `json:"input"`
	Output  int64    `json:"output"`
	Thought int64    `json:"thought"`
	Cache   int64    `json:"cache"`
	Tool    int64    `json:"tool"`
}

// SessionRow is the JSON form of a session report row.
type SessionRow struct {
	Date    string   `json:"date"`
	Session string   `json:"session"`
	Models  []string `json:"models"`
	Input   int64    `json:"input"`
	Output  int64    `json:"output"`
	Thought int64    `json:"thought"`
	Cache   int64    `json:"cache"`
	Tool    int64    `json:"tool"`
}

// JSONRows returns the report rows with buckets rounded to integers and
// models in insertion order. It never returns nil.
func (r Report) JSONRows() []any {
	rows := make([]any, 0, len(r.Daily)+len(r.Sessions))
	for _, s := range r.Sessions {
		rows = append(rows, SessionRow{
			Date:    s.Date,
			Session: s.SessionID,
			Models:  s.Models.Slice(),
			Input:   round(s.Input),
			Output:  round(s.Output),
			Thought: round(s.Thought),
			Cache:   round(s.Cache),
			Tool:    round(s.Tool),
		})
	}
	for _, d := range r.Daily {
		rows = append(rows, DailyRow{
			Date:    d.Date,
			Models:  d.Models.Slice(),
			Input:   round(d.Input),
			Output:  round(d.Output),
			Thought: round(d.Thought),
			Cache:   round(d.Cache),
			Tool:    round(d.Tool),
		})
	}
	return rows
}

func round(v float64) int64 {
	return int64(math.Round(v))
}
