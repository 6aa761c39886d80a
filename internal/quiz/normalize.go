package quiz

import "strings"

// Normalize prepares an answer for comparison: surrounding whitespace is
// trimmed, latin letters are case-folded, and inner whitespace runs
// collapse to a single space. Chinese text passes through unchanged.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
