package sift

import (
	"strings"
	"unicode"
)

// Normalize collapses every whitespace run in raw (spaces, tabs, newlines,
// any Unicode space) into a single space and trims the ends. Empty or
// all-whitespace input yields ""; Filter drops such paragraphs before
// classification. Normalize is idempotent.
func Normalize(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	pendingSpace := false
	for _, r := range raw {
		if unicode.IsSpace(r) {
			if sb.Len() > 0 {
				pendingSpace = true
			}
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
