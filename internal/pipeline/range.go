package pipeline

import (
	"time"

	"github.com/theirongolddev/gcusage/internal/model"
)

// defaultWindowDays is the length of the window used when neither a period
// nor explicit bounds are requested: today and the five days before it.
const defaultWindowDays = 6

// ResolveRange computes the effective report window. since and until are
// the explicit bounds (zero when not given); calendar math happens in
// now's location.
//
//   - session: today, clamped by until
//   - nothing requested: the trailing defaultWindowDays days ending today
//   - day: today, or the explicit bounds unchanged
//   - week: since's day + 6 days, or the Monday-based week of now; clamped
//   - month: the calendar month of since (or now); clamped
func ResolveRange(period model.Period, periodProvided bool, since, until, now time.Time) model.Range {
	loc := now.Location()

	if period == model.PeriodSession {
		return clampUntil(model.Range{Since: StartOfDay(now), Until: EndOfDay(now)}, until)
	}

	if !periodProvided && since.IsZero() && until.IsZero() {
		return model.Range{
			Since: StartOfDay(now.AddDate(0, 0, -(defaultWindowDays - 1))),
			Until: EndOfDay(now),
		}
	}

	switch period {
	case model.PeriodDay:
		if since.IsZero() && until.IsZero() {
			return model.Range{Since: StartOfDay(now), Until: EndOfDay(now)}
		}
		return model.Range{Since: since, Until: until}

	case model.PeriodWeek:
		start := StartOfWeekMonday(now)
		if !since.IsZero() {
			start = StartOfDay(since.In(loc))
		}
		return clampUntil(model.Range{Since: start, Until: EndOfDay(start.AddDate(0, 0, 6))}, until)

	case model.PeriodMonth:
		base := now
		if !since.IsZero() {
			base = since.In(loc)
		}
		first := time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, loc)
		return clampUntil(model.Range{Since: first, Until: EndOfDay(first.AddDate(0, 1, -1))}, until)
	}

	return model.Range{Since: since, Until: until}
}

// clampUntil lets an explicit until narrow the window, never widen it.
func clampUntil(r model.Range, until time.Time) model.Range {
	if until.IsZero() {
		return r
	}
	if r.Until.IsZero() || until.Before(r.Until) {
		r.Until = until
	}
	return r
}

// StartOfDay returns 00:00:00.000 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, t.Location())
}

// StartOfWeekMonday returns the start of the Monday on or before t.
func StartOfWeekMonday(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t.AddDate(0, 0, -offset))
}
