package source

// SplitObjects partitions a blob of concatenated JSON object literals into
// the balanced {...} spans it contains, in file order. It never fails:
// text outside any span is dropped and an unterminated trailing span is
// discarded. Braces and quotes inside strings are inert.
//
// The returned slices alias data.
func SplitObjects(data []byte) [][]byte {
	var (
		spans    [][]byte
		depth    int
		inString bool
		escaped  bool
		start    = -1
	)

	for i, ch := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				spans = append(spans, data[start:i+1])
				start = -1
			}
		}
	}

	return spans
}
