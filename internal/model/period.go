package model

import (
	"fmt"
	"strings"
	"time"
)

// Period selects the reporting bucket.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodSession Period = "session"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodSession:
		return p, nil
	}
	return "", fmt.Errorf("invalid period %q, want day|week|month|session", s)
}

// Range is an inclusive time window. A zero bound is unbounded.
type Range struct {
	Since time.Time
	Until time.Time
}

// Bounded reports whether both ends are set.
func (r Range) Bounded() bool {
	return !r.Since.IsZero() && !r.Until.IsZero()
}

// ContainsMs reports whether the epoch-millisecond timestamp lies in the window.
func (r Range) ContainsMs(ms int64) bool {
	if !r.Since.IsZero() && ms < r.Since.UnixMilli() {
		return false
	}
	if !r.Until.IsZero() && ms > r.Until.UnixMilli() {
		return false
	}
	return true
}
