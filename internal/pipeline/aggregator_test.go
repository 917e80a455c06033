package pipeline

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/gcusage/internal/model"
)

// ms returns epoch milliseconds for a UTC wall-clock time.
func ms(year int, month time.Month, day, hour, minute int) int64 {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC).UnixMilli()
}

func pt(seq int64, ts int64, session, modelName, typ string, v float64) model.MetricPoint {
	return model.MetricPoint{Seq: seq, TimestampMs: ts, SessionID: session, Model: modelName, Type: typ, Value: v}
}

func TestBuildSessionSummaries_LastValueWins(t *testing.T) {
	points := []model.MetricPoint{
		pt(0, ms(2024, 3, 6, 10, 0), "s1", "gemini-pro", "input", 10),
		pt(1, ms(2024, 3, 6, 10, 5), "s1", "gemini-pro", "input", 25),
		pt(2, ms(2024, 3, 6, 10, 9), "s1", "gemini-pro", "input", 40),
	}

	got := BuildSessionSummaries(points)
	if len(got) != 1 {
		t.Fatalf("got %d summaries, want 1", len(got))
	}
	s := got[0]
	if s.Input != 40 {
		t.Errorf("Input = %v, want 40 (last wins)", s.Input)
	}
	if s.SessionStartMs != ms(2024, 3, 6, 10, 0) {
		t.Errorf("SessionStartMs = %d, want first timestamp", s.SessionStartMs)
	}
	if !reflect.DeepEqual(s.Models.Slice(), []string{"gemini-pro"}) {
		t.Errorf("Models = %v, want [gemini-pro]", s.Models.Slice())
	}
}

func TestBuildSessionSummaries_BucketsAndStart(t *testing.T) {
	points := []model.MetricPoint{
		pt(0, 5000, "s1", "flash", "output", 7),
		pt(1, 1000, "s1", "pro", "input", 3),
		pt(2, 3000, "s1", "pro", "thought", 2),
		pt(3, 3000, "s1", "pro", "cache", 4),
		pt(4, 3000, "s1", "pro", "tool", 1),
		pt(5, 3000, "s1", "pro", "mystery", 1000),
		pt(6, 2000, "", "pro", "input", 99),
	}

	got := BuildSessionSummaries(points)
	if len(got) != 1 {
		t.Fatalf("got %d summaries, want 1 (no-session point dropped)", len(got))
	}
	s := got[0]
	want := model.Totals{Input: 3, Output: 7, Thought: 2, Cache: 4, Tool: 1}
	if s.Totals != want {
		t.Errorf("Totals = %+v, want %+v", s.Totals, want)
	}
	if s.SessionStartMs != 1000 {
		t.Errorf("SessionStartMs = %d, want 1000", s.SessionStartMs)
	}
	// First-seen order is chronological.
	if !reflect.DeepEqual(s.Models.Slice(), []string{"pro", "flash"}) {
		t.Errorf("Models = %v, want [pro flash]", s.Models.Slice())
	}
}

func TestBuildSessionSummaries_SinglePoint(t *testing.T) {
	got := BuildSessionSummaries([]model.MetricPoint{pt(0, 1, "s", "m", "tool", 9)})
	if len(got) != 1 {
		t.Fatalf("got %d summaries, want 1", len(got))
	}
	if want := (model.Totals{Tool: 9}); got[0].Totals != want {
		t.Errorf("Totals = %+v, want %+v", got[0].Totals, want)
	}
}

func TestBuildSessionSummaries_Empty(t *testing.T) {
	got := BuildSessionSummaries(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestBuildSessionSummaries_EqualTimestampsResolveBySeq(t *testing.T) {
	points := []model.MetricPoint{
		pt(4, 1000, "s1", "m", "input", 1),
		pt(9, 1000, "s1", "m", "input", 2),
		pt(7, 1000, "s1", "m", "input", 3),
	}
	got := BuildSessionSummaries(points)
	if got[0].Input != 2 {
		t.Errorf("Input = %v, want 2 (highest Seq wins on equal timestamps)", got[0].Input)
	}
}

func TestBuildSessionSummaries_PermutationInvariant(t *testing.T) {
	var points []model.MetricPoint
	var seq int64
	for _, sid := range []string{"b", "a", "c"} {
		for _, m := range []string{"pro", "flash"} {
			for _, typ := range []string{"input", "output", "cache"} {
				for k := 0; k < 4; k++ {
					// Repeated timestamps exercise the tie-break.
					points = append(points, pt(seq, int64(1000+(k/2)*10), sid, m, typ, float64(seq)))
					seq++
				}
			}
		}
	}

	want := BuildSessionSummaries(points)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 25; i++ {
		shuffled := make([]model.MetricPoint, len(points))
		copy(shuffled, points)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := BuildSessionSummaries(shuffled)
		if len(got) != len(want) {
			t.Fatalf("shuffle %d: %d summaries, want %d", i, len(got), len(want))
		}
		for j := range want {
			if got[j].SessionID != want[j].SessionID || got[j].Totals != want[j].Totals ||
				!reflect.DeepEqual(got[j].Models.Slice(), want[j].Models.Slice()) {
				t.Fatalf("shuffle %d summary %d = %+v, want %+v", i, j, got[j], want[j])
			}
		}
	}
}

func TestBuildSessionSummaries_SortedByStartThenID(t *testing.T) {
	points := []model.MetricPoint{
		pt(0, 2000, "zeta", "m", "input", 1),
		pt(1, 1000, "beta", "m", "input", 1),
		pt(2, 1000, "alpha", "m", "input", 1),
	}
	got := BuildSessionSummaries(points)
	var ids []string
	for _, s := range got {
		ids = append(ids, s.SessionID)
	}
	if !reflect.DeepEqual(ids, []string{"alpha", "beta", "zeta"}) {
		t.Errorf("order = %v, want [alpha beta zeta]", ids)
	}
}

func TestFilterPoints(t *testing.T) {
	points := []model.MetricPoint{
		pt(0, 1, "s", "pro", "input", 1),
		pt(1, 1, "s", "flash", "input", 1),
		pt(2, 1, "s", "pro", "output", 1),
	}

	tests := []struct {
		name        string
		model, typ  string
		wantIndexes []int64
	}{
		{"no filter", "", "", []int64{0, 1, 2}},
		{"model", "pro", "", []int64{0, 2}},
		{"type", "", "input", []int64{0, 1}},
		{"both", "pro", "output", []int64{2}},
		{"exact match only", "pr", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []int64
			for _, p := range FilterPoints(points, tt.model, tt.typ) {
				got = append(got, p.Seq)
			}
			if !reflect.DeepEqual(got, tt.wantIndexes) {
				t.Errorf("got %v, want %v", got, tt.wantIndexes)
			}
		})
	}
}

func TestAggregateSessionsToDay(t *testing.T) {
	points := []model.MetricPoint{
		pt(0, ms(2024, 3, 6, 9, 0), "s1", "pro", "output", 100),
		pt(1, ms(2024, 3, 7, 9, 0), "s2", "flash", "output", 100),
	}

	days := AggregateSessionsToDay(BuildSessionSummaries(points), time.UTC)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Date != "2024-03-06" || days[1].Date != "2024-03-07" {
		t.Errorf("dates = %s, %s", days[0].Date, days[1].Date)
	}
	var total float64
	for _, d := range days {
		if d.Output != 100 {
			t.Errorf("%s Output = %v, want 100", d.Date, d.Output)
		}
		total += d.Output
	}
	if total != 200 {
		t.Errorf("total = %v, want 200", total)
	}
}

func TestAggregateSessionsToDay_SessionCountsOnStartDayOnly(t *testing.T) {
	// s1 starts late on the 6th and keeps reporting after midnight.
	points := []model.MetricPoint{
		pt(0, ms(2024, 3, 6, 23, 50), "s1", "pro", "input", 10),
		pt(1, ms(2024, 3, 7, 0, 30), "s1", "pro", "input", 60),
		pt(2, ms(2024, 3, 7, 8, 0), "s2", "flash", "input", 5),
		pt(3, ms(2024, 3, 7, 9, 0), "s3", "pro", "input", 7),
	}

	summaries := BuildSessionSummaries(points)
	days := AggregateSessionsToDay(summaries, time.UTC)
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Input != 60 {
		t.Errorf("2024-03-06 Input = %v, want 60", days[0].Input)
	}
	if days[1].Input != 12 {
		t.Errorf("2024-03-07 Input = %v, want 12", days[1].Input)
	}
	if !reflect.DeepEqual(days[1].Models.Slice(), []string{"flash", "pro"}) {
		t.Errorf("2024-03-07 Models = %v, want [flash pro]", days[1].Models.Slice())
	}

	var sessionSum, daySum float64
	for _, s := range summaries {
		sessionSum += s.Sum()
	}
	for _, d := range days {
		daySum += d.Sum()
	}
	if sessionSum != daySum {
		t.Errorf("day totals %v != session totals %v", daySum, sessionSum)
	}
}

func TestDateKey_UsesLocation(t *testing.T) {
	ts := ms(2024, 3, 6, 23, 30)
	if got := DateKey(ts, time.UTC); got != "2024-03-06" {
		t.Errorf("UTC DateKey = %s, want 2024-03-06", got)
	}
	tokyo := time.FixedZone("JST", 9*3600)
	if got := DateKey(ts, tokyo); got != "2024-03-07" {
		t.Errorf("JST DateKey = %s, want 2024-03-07", got)
	}
}

func TestFilterSessionsByRange_Inclusive(t *testing.T) {
	summaries := []model.SessionSummary{
		{SessionID: "before", SessionStartMs: 999},
		{SessionID: "start", SessionStartMs: 1000},
		{SessionID: "end", SessionStartMs: 2000},
		{SessionID: "after", SessionStartMs: 2001},
	}
	r := model.Range{Since: time.UnixMilli(1000), Until: time.UnixMilli(2000)}

	got := FilterSessionsByRange(summaries, r)
	if len(got) != 2 || got[0].SessionID != "start" || got[1].SessionID != "end" {
		t.Errorf("got %+v, want [start end]", got)
	}

	if got := FilterSessionsByRange(summaries, model.Range{}); len(got) != 4 {
		t.Errorf("unbounded range kept %d, want 4", len(got))
	}
}
