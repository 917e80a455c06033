// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTokens formats a token count rounded to the nearest integer with
// comma separators. e.g., 1234567.4 -> "1,234,567"
func FormatTokens(v float64) string {
	return FormatNumber(int64(math.Round(v)))
}

// FormatCompact formats a token count with two-decimal suffixes.
// e.g., 1234 -> "1.23k", 1234567 -> "1.23M", 999 -> "999"
func FormatCompact(v float64) string {
	abs := math.Abs(v)

	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fk", v/1e3)
	default:
		return FormatTokens(v)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
