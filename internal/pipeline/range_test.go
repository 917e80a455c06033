package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/gcusage/internal/model"
)

func at(year int, month time.Month, day, hour, minute, sec, msec int) time.Time {
	return time.Date(year, month, day, hour, minute, sec, msec*int(time.Millisecond), time.UTC)
}

func TestResolveRange(t *testing.T) {
	// Sunday afternoon.
	now := at(2024, 3, 10, 15, 0, 0, 0)
	wed := at(2024, 3, 6, 0, 0, 0, 0)
	since := at(2024, 3, 8, 0, 0, 0, 0)
	until := at(2024, 3, 9, 23, 59, 59, 999)

	tests := []struct {
		name         string
		period       model.Period
		provided     bool
		since, until time.Time
		wantSince    time.Time
		wantUntil    time.Time
	}{
		{
			name:      "default window is today and the five days before",
			period:    model.PeriodDay,
			wantSince: at(2024, 3, 5, 0, 0, 0, 0),
			wantUntil: at(2024, 3, 10, 23, 59, 59, 999),
		},
		{
			name:      "explicit day is today",
			period:    model.PeriodDay,
			provided:  true,
			wantSince: at(2024, 3, 10, 0, 0, 0, 0),
			wantUntil: at(2024, 3, 10, 23, 59, 59, 999),
		},
		{
			name:      "day with bounds passes them through",
			period:    model.PeriodDay,
			since:     since,
			until:     until,
			wantSince: since,
			wantUntil: until,
		},
		{
			name:      "day with only since is open-ended",
			period:    model.PeriodDay,
			since:     since,
			wantSince: since,
		},
		{
			name:      "week from since",
			period:    model.PeriodWeek,
			provided:  true,
			since:     wed,
			wantSince: at(2024, 3, 6, 0, 0, 0, 0),
			wantUntil: at(2024, 3, 12, 23, 59, 59, 999),
		},
		{
			name:      "week defaults to the monday week of now",
			period:    model.PeriodWeek,
			provided:  true,
			wantSince: at(2024, 3, 4, 0, 0, 0, 0),
			wantUntil: at(2024, 3, 10, 23, 59, 59, 999),
		},
		{
			name:      "week clamped by until",
			period:    model.PeriodWeek,
			provided:  true,
			since:     wed,
			until:     until,
			wantSince: at(2024, 3, 6, 0, 0, 0, 0),
			wantUntil: until,
		},
		{
			name:      "until past the week does not widen it",
			period:    model.PeriodWeek,
			provided:  true,
			since:     wed,
			until:     at(2024, 4, 1, 0, 0, 0, 0),
			wantSince: at(2024, 3, 6, 0, 0, 0, 0),
			wantUntil: at(2024, 3, 12, 23, 59, 59, 999),
		},
		{
			name:      "month of now",
			period:    model.PeriodMonth,
			provided:  true,
			wantSince: at(2024, 3, 1, 0, 0, 0, 0),
			wantUntil: at(2024, 3, 31, 23, 59, 59, 999),
		},
		{
			name:      "month of since handles leap february",
			period:    model.PeriodMonth,
			provided:  true,
			since:     at(2024, 2, 17, 8, 0, 0, 0),
			wantSince: at(2024, 2, 1, 0, 0, 0, 0),
			wantUntil: at(2024, 2, 29, 23, 59, 59, 999),
		},
		{
			name:      "session is today",
			period:    model.PeriodSession,
			provided:  true,
			wantSince: at(2024, 3, 10, 0, 0, 0, 0),
			wantUntil: at(2024, 3, 10, 23, 59, 59, 999),
		},
		{
			name:      "session ignores since and honours an earlier until",
			period:    model.PeriodSession,
			since:     wed,
			until:     at(2024, 3, 10, 12, 0, 0, 0),
			wantSince: at(2024, 3, 10, 0, 0, 0, 0),
			wantUntil: at(2024, 3, 10, 12, 0, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRange(tt.period, tt.provided, tt.since, tt.until, now)
			if !got.Since.Equal(tt.wantSince) || got.Since.IsZero() != tt.wantSince.IsZero() {
				t.Errorf("Since = %v, want %v", got.Since, tt.wantSince)
			}
			if !got.Until.Equal(tt.wantUntil) || got.Until.IsZero() != tt.wantUntil.IsZero() {
				t.Errorf("Until = %v, want %v", got.Until, tt.wantUntil)
			}
		})
	}
}

func TestResolveRange_UsesNowLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2024-03-09 20:00 UTC is already the 10th in Tokyo.
	now := at(2024, 3, 9, 20, 0, 0, 0).In(tokyo)

	got := ResolveRange(model.PeriodDay, true, time.Time{}, time.Time{}, now)
	want := time.Date(2024, 3, 10, 0, 0, 0, 0, tokyo)
	if !got.Since.Equal(want) {
		t.Errorf("Since = %v, want %v", got.Since, want)
	}
}

func TestStartOfWeekMonday(t *testing.T) {
	tests := []struct {
		day  int
		want int
	}{
		{4, 4},  // Monday
		{6, 4},  // Wednesday
		{10, 4}, // Sunday
		{11, 11},
	}
	for _, tt := range tests {
		got := StartOfWeekMonday(at(2024, 3, tt.day, 13, 0, 0, 0))
		if want := at(2024, 3, tt.want, 0, 0, 0, 0); !got.Equal(want) {
			t.Errorf("StartOfWeekMonday(2024-03-%02d) = %v, want %v", tt.day, got, want)
		}
	}
}

func TestRangeContainsMs(t *testing.T) {
	r := model.Range{Since: at(2024, 3, 6, 0, 0, 0, 0), Until: at(2024, 3, 6, 23, 59, 59, 999)}
	if !r.ContainsMs(r.Since.UnixMilli()) || !r.ContainsMs(r.Until.UnixMilli()) {
		t.Error("range bounds should be inclusive")
	}
	if r.ContainsMs(r.Until.UnixMilli() + 1) {
		t.Error("point after until was included")
	}
}
