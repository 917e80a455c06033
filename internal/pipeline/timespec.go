package pipeline

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTime is returned for time specs that cannot be parsed.
var ErrInvalidTime = errors.New("invalid time")

// Bound says which end of a window a time spec describes. Whole-day specs
// resolve to the start of the day for BoundSince and the end for BoundUntil.
type Bound int

const (
	BoundSince Bound = iota
	BoundUntil
)

var relativeSpec = regexp.MustCompile(`^(\d+)([dh])$`)

// Layouts accepted for absolute times, interpreted in now's location
// unless they carry an offset.
var absoluteLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimeSpec parses a --since/--until value. Accepted forms: "today",
// "yesterday", "<N>d", "<N>h", "YYYY-MM-DD", and the absoluteLayouts.
// An empty spec yields the zero time.
func ParseTimeSpec(input string, bound Bound, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return time.Time{}, nil
	}
	lower := strings.ToLower(raw)
	loc := now.Location()

	dayBound := func(t time.Time) time.Time {
		if bound == BoundSince {
			return StartOfDay(t)
		}
		return EndOfDay(t)
	}

	switch lower {
	case "today":
		return dayBound(now), nil
	case "yesterday":
		return dayBound(now.AddDate(0, 0, -1)), nil
	}

	if m := relativeSpec.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, input)
		}
		unit := time.Hour
		if m[2] == "d" {
			unit = 24 * time.Hour
		}
		// Past this a Duration wraps around.
		if int64(n) > math.MaxInt64/int64(unit) {
			return time.Time{}, fmt.Errorf("%w: %q is out of range", ErrInvalidTime, input)
		}
		return now.Add(-time.Duration(n) * unit), nil
	}

	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return dayBound(t), nil
	}

	upper := strings.ToUpper(raw)
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, upper, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, input)
}
