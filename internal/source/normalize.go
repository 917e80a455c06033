package source

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/gcusage/internal/model"
)

// BuildPoint converts a raw data point into a canonical measurement.
// It returns false when no value or no timestamp can be derived.
func BuildPoint(dp DataPoint) (model.MetricPoint, bool) {
	value, ok := ReadValue(dp)
	if !ok {
		return model.MetricPoint{}, false
	}
	ts, ok := ReadTimestampMs(dp)
	if !ok {
		return model.MetricPoint{}, false
	}

	attrs := ReadAttributes(dp["attributes"])
	return model.MetricPoint{
		TimestampMs: ts,
		Model:       attrOr(attrs, AttrModel, UnknownAttribute),
		Type:        attrOr(attrs, AttrType, UnknownAttribute),
		SessionID:   SessionIDFrom(attrs),
		Value:       value,
	}, true
}

// ReadValue resolves the measurement value: asInt, then asDouble, then
// value, then asInt given as a numeric string. A blank asInt string reads
// as zero.
func ReadValue(dp DataPoint) (float64, bool) {
	for _, key := range []string{"asInt", "asDouble", "value"} {
		if n, ok := numberOf(dp[key]); ok {
			return n.float(), true
		}
	}
	if s, ok := dp["asInt"].(string); ok {
		// Exporters emit "" for a zero counter.
		if strings.TrimSpace(s) == "" {
			return 0, true
		}
		if n, ok := parseNumber(s); ok {
			return n.float(), true
		}
	}
	return 0, false
}

// ReadTimestampMs derives epoch milliseconds from, in order: an endTime
// [sec, nsec] pair, a startTime pair, or the first scalar among
// timeUnixNano, endTimeUnixNano, timeUnix and time. Scalars are scaled by
// magnitude since exporters disagree on units.
func ReadTimestampMs(dp DataPoint) (int64, bool) {
	for _, key := range []string{"endTime", "startTime"} {
		if ms, ok := pairMs(dp[key]); ok {
			return ms, true
		}
	}

	var candidate any
	for _, key := range []string{"timeUnixNano", "endTimeUnixNano", "timeUnix", "time"} {
		if isScalar(dp[key]) {
			candidate = dp[key]
			break
		}
	}
	if candidate == nil {
		return 0, false
	}

	n, ok := coerceNumber(candidate)
	if !ok {
		return 0, false
	}
	return scaleToMs(n), true
}

// pairMs reads a [seconds, nanoseconds] pair.
func pairMs(v any) (int64, bool) {
	arr, ok := v.([]any)
	if !ok || len(arr) < 2 {
		return 0, false
	}
	sec, ok := coerceNumber(arr[0])
	if !ok {
		return 0, false
	}
	nsec, ok := coerceNumber(arr[1])
	if !ok {
		return 0, false
	}
	if sec.isInt && nsec.isInt {
		return sec.i*1000 + floorDiv(nsec.i, 1_000_000), true
	}
	return int64(math.Floor(sec.float()*1000 + math.Floor(nsec.float()/1e6))), true
}

func scaleToMs(n number) int64 {
	if n.isInt {
		switch {
		case n.i > 1e15:
			return floorDiv(n.i, 1_000_000)
		case n.i > 1e12:
			return floorDiv(n.i, 1_000)
		default:
			return n.i
		}
	}
	switch {
	case n.f > 1e15:
		return int64(math.Floor(n.f / 1e6))
	case n.f > 1e12:
		return int64(math.Floor(n.f / 1e3))
	default:
		return int64(math.Floor(n.f))
	}
}

// ReadAttributes flattens either attribute encoding into a string map:
// an array of {key, value} pairs, or a plain object.
func ReadAttributes(v any) map[string]string {
	out := make(map[string]string)

	switch attrs := v.(type) {
	case []any:
		for _, item := range attrs {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			key, _ := obj["key"].(string)
			if key == "" {
				continue
			}
			if s, ok := attributeValue(obj["value"]); ok {
				out[key] = s
			}
		}
	case map[string]any:
		for key, raw := range attrs {
			if s, ok := attributeValue(raw); ok {
				out[key] = s
			}
		}
	}

	return out
}

// attributeValue unwraps a plain or typed ({stringValue|intValue|doubleValue})
// attribute value.
func attributeValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case map[string]any:
		if s, ok := val["stringValue"].(string); ok {
			return s, true
		}
		for _, key := range []string{"intValue", "doubleValue"} {
			if s, ok := scalarText(val[key]); ok {
				return s, true
			}
		}
		return "", false
	}
	if n, ok := numberOf(v); ok {
		return n.text, true
	}
	return "", false
}

// SessionIDFrom returns session.id, else session_id, else "".
func SessionIDFrom(attrs map[string]string) string {
	if id := attrs[AttrSessionID]; id != "" {
		return id
	}
	return attrs[AttrSessionIDAlt]
}

func attrOr(attrs map[string]string, key, fallback string) string {
	if v := attrs[key]; v != "" {
		return v
	}
	return fallback
}

// number keeps integer literals exact; f is always populated.
type number struct {
	i     int64
	f     float64
	isInt bool
	text  string
}

func (n number) float() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// numberOf accepts JSON numbers only (not numeric strings).
func numberOf(v any) (number, bool) {
	switch val := v.(type) {
	case json.Number:
		return parseNumber(val.String())
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return number{}, false
		}
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return number{i: int64(val), f: val, isInt: true, text: strconv.FormatFloat(val, 'f', -1, 64)}, true
		}
		return number{f: val, text: strconv.FormatFloat(val, 'f', -1, 64)}, true
	case int:
		return number{i: int64(val), f: float64(val), isInt: true, text: strconv.Itoa(val)}, true
	case int64:
		return number{i: val, f: float64(val), isInt: true, text: strconv.FormatInt(val, 10)}, true
	}
	return number{}, false
}

// coerceNumber accepts JSON numbers and numeric strings.
func coerceNumber(v any) (number, bool) {
	if s, ok := v.(string); ok {
		return parseNumber(s)
	}
	return numberOf(v)
}

func parseNumber(s string) (number, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return number{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return number{i: i, f: float64(i), isInt: true, text: s}, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return number{}, false
	}
	return number{f: f, text: s}, true
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, json.Number, float64, int, int64:
		return true
	}
	return false
}

func scalarText(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if n, ok := numberOf(v); ok {
		return n.text, true
	}
	return "", false
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
