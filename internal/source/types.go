package source

import "encoding/json"

// DataPoint is one raw data-point object as decoded from the telemetry log.
// Numeric members are json.Number.
type DataPoint = map[string]any

// RawPoint is a data point paired with its ordinal in canonical extraction order.
type RawPoint struct {
	Seq  int64
	Data DataPoint

	// Bytes is the data point as it appeared in the log. Only ExtractLogRaw
	// sets it.
	Bytes json.RawMessage
}

// Attribute keys read from a data point.
const (
	AttrModel         = "model"
	AttrType          = "type"
	AttrSessionID     = "session.id"
	AttrSessionIDAlt  = "session_id"
	UnknownAttribute  = "unknown"
	NoSessionSentinel = "no-session"
)
