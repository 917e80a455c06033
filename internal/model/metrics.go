package model

// Token usage types recognised in the "type" attribute.
const (
	TypeInput   = "input"
	TypeOutput  = "output"
	TypeThought = "thought"
	TypeCache   = "cache"
	TypeTool    = "tool"
)

// Totals holds the five token buckets.
type Totals struct {
	Input   float64
	Output  float64
	Thought float64
	Cache   float64
	Tool    float64
}

// AddType adds v to the bucket named by typ. Unknown types are ignored.
func (t *Totals) AddType(typ string, v float64) {
	switch typ {
	case TypeInput:
		t.Input += v
	case TypeOutput:
		t.Output += v
	case TypeThought:
		t.Thought += v
	case TypeCache:
		t.Cache += v
	case TypeTool:
		t.Tool += v
	}
}

// Add accumulates every bucket of o into t.
func (t *Totals) Add(o Totals) {
	t.Input += o.Input
	t.Output += o.Output
	t.Thought += o.Thought
	t.Cache += o.Cache
	t.Tool += o.Tool
}

// Sum returns the total across all buckets.
func (t Totals) Sum() float64 {
	return t.Input + t.Output + t.Thought + t.Cache + t.Tool
}

// DailyTotals is one calendar-day report row.
type DailyTotals struct {
	Date   string // YYYY-MM-DD in the report location
	Models *ModelSet
	Totals
}

// SessionTotals is one session report row.
type SessionTotals struct {
	Date      string
	SessionID string
	Models    *ModelSet
	Totals
}
