package source

import (
	"bytes"
	"encoding/json"
	"sort"
)

// TargetMetric is the only metric family the extractor recognises.
const TargetMetric = "gemini_cli.token.usage"

// DecodeSegment parses one object span. Numbers are kept as json.Number so
// that integer timestamps and counters survive a round trip unchanged.
func DecodeSegment(seg []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(seg))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// ExtractDataPoints walks root and returns every object found in the
// dataPoints array of a block named TargetMetric (at "name" or
// "descriptor.name"), however deeply nested.
//
// The walk uses an explicit stack. Array elements are visited in index
// order and object members in sorted key order, so the result order is a
// pure function of the document.
func ExtractDataPoints(root any) []DataPoint {
	var points []DataPoint
	stack := []any{root}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := node.(type) {
		case []any:
			for i := len(n) - 1; i >= 0; i-- {
				stack = append(stack, n[i])
			}

		case map[string]any:
			if isTargetBlock(n) {
				if dps, ok := n["dataPoints"].([]any); ok {
					for _, dp := range dps {
						if obj, ok := dp.(map[string]any); ok {
							points = append(points, obj)
						}
					}
				}
			}

			keys := make([]string, 0, len(n))
			for k := range n {
				keys = append(keys, k)
			}
			sort.Sort(sort.Reverse(sort.StringSlice(keys)))
			for _, k := range keys {
				stack = append(stack, n[k])
			}
		}
	}

	return points
}

func isTargetBlock(obj map[string]any) bool {
	if name, ok := obj["name"].(string); ok && name == TargetMetric {
		return true
	}
	desc, ok := obj["descriptor"].(map[string]any)
	if !ok {
		return false
	}
	name, ok := desc["name"].(string)
	return ok && name == TargetMetric
}

// ExtractResult holds the raw data points of a whole log, in canonical order.
type ExtractResult struct {
	Points            []RawPoint
	Segments          int
	MalformedSegments int
}

// ExtractLog segments data, decodes each span, and collects every target
// data point. Spans that are not valid JSON are counted and skipped.
func ExtractLog(data []byte) ExtractResult {
	var res ExtractResult
	var seq int64

	for _, seg := range SplitObjects(data) {
		res.Segments++
		root, err := DecodeSegment(seg)
		if err != nil {
			res.MalformedSegments++
			continue
		}
		for _, dp := range ExtractDataPoints(root) {
			res.Points = append(res.Points, RawPoint{Seq: seq, Data: dp})
			seq++
		}
	}

	return res
}

// ExtractRawDataPoints is ExtractDataPoints over undecoded JSON. It returns
// the original bytes of each target data point, in the same order, so that
// member order and formatting survive.
func ExtractRawDataPoints(seg []byte) ([]json.RawMessage, error) {
	var root json.RawMessage
	if err := json.Unmarshal(seg, &root); err != nil {
		return nil, err
	}

	var points []json.RawMessage
	stack := []json.RawMessage{root}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch kindOf(node) {
		case '[':
			var elems []json.RawMessage
			if err := json.Unmarshal(node, &elems); err != nil {
				return nil, err
			}
			for i := len(elems) - 1; i >= 0; i-- {
				stack = append(stack, elems[i])
			}

		case '{':
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(node, &obj); err != nil {
				return nil, err
			}
			if isRawTargetBlock(obj) {
				var dps []json.RawMessage
				if json.Unmarshal(obj["dataPoints"], &dps) == nil {
					for _, dp := range dps {
						if kindOf(dp) == '{' {
							points = append(points, dp)
						}
					}
				}
			}

			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			sort.Sort(sort.Reverse(sort.StringSlice(keys)))
			for _, k := range keys {
				stack = append(stack, obj[k])
			}
		}
	}

	return points, nil
}

// kindOf returns the first significant byte of a JSON value.
func kindOf(v json.RawMessage) byte {
	v = bytes.TrimLeft(v, " \t\r\n")
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

func isRawTargetBlock(obj map[string]json.RawMessage) bool {
	var name string
	if kindOf(obj["name"]) == '"' && json.Unmarshal(obj["name"], &name) == nil && name == TargetMetric {
		return true
	}
	if kindOf(obj["descriptor"]) != '{' {
		return false
	}
	var desc map[string]json.RawMessage
	if json.Unmarshal(obj["descriptor"], &desc) != nil {
		return false
	}
	return kindOf(desc["name"]) == '"' && json.Unmarshal(desc["name"], &name) == nil && name == TargetMetric
}

// ExtractLogRaw is ExtractLog with each point's original bytes attached.
// Seq numbering matches ExtractLog for the same input.
func ExtractLogRaw(data []byte) ExtractResult {
	var res ExtractResult
	var seq int64

	for _, seg := range SplitObjects(data) {
		res.Segments++
		raws, err := ExtractRawDataPoints(seg)
		if err != nil {
			res.MalformedSegments++
			continue
		}
		for _, raw := range raws {
			v, err := DecodeSegment(raw)
			if err != nil {
				continue
			}
			dp, ok := v.(map[string]any)
			if !ok {
				continue
			}
			res.Points = append(res.Points, RawPoint{Seq: seq, Data: dp, Bytes: raw})
			seq++
		}
	}

	return res
}
