// Package util holds small logging helpers.
package util

import "fmt"

// MaskToken hides the body of a token in log output, keeping only the tail
// for correlation.
func MaskToken(t string) string {
	if len(t) < 20 {
		return t
	}
	return "..." + t[len(t)-12:]
}

// TruncateLog truncates long strings for verbose logging so a single line
// cannot blow up the log file.
func TruncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}
