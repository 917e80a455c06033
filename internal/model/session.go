// Package model defines domain types for gcusage metrics and sessions.
package model

// MetricPoint is one canonical token-usage measurement.
// Seq is the point's ordinal in the deterministic extraction order of the
// log it came from; it breaks ties between equal timestamps.
type MetricPoint struct {
	TimestampMs int64
	Model       string
	Type        string
	SessionID   string // empty when the data point carried no session id
	Value       float64
	Seq         int64
}

// HasSession reports whether the point can take part in session aggregation.
func (p MetricPoint) HasSession() bool {
	return p.SessionID != ""
}

// SessionSummary holds the deduplicated totals for a single session.
type SessionSummary struct {
	SessionID      string
	SessionStartMs int64
	Models         *ModelSet
	Totals
}
