// CLAUDE:SUMMARY PDF text-layer quality scoring — flags garbled extractions that likely need OCR.
package docpipe

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPrintableRatio = 0.85
	minWordlikeRatio  = 0.4
	minCharsPerPage   = 50
)

// qualityWarning inspects extracted PDF text and returns a human-readable
// warning when it looks degraded, or "" when it looks fine. Extraction still
// succeeds either way; the caller surfaces the warning alongside the result.
func qualityWarning(text string, pages int) string {
	if text == "" {
		return ""
	}
	if printableRatio(text) < minPrintableRatio || wordlikeRatio(text) < minWordlikeRatio {
		return "PDF text layer looks garbled; the file may be scanned and need OCR"
	}
	if pages > 0 && float64(utf8.RuneCountInString(text))/float64(pages) < minCharsPerPage {
		return "PDF has almost no text layer; the file may be scanned and need OCR"
	}
	return ""
}

// printableRatio returns the ratio of printable characters in text.
// Excludes PUA U+E000–U+F8FF, control chars below U+0020 (except \n\r\t),
// and U+FFFD.
func printableRatio(text string) float64 {
	if len(text) == 0 {
		return 1.0
	}
	total := 0
	printable := 0
	for _, r := range text {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

func isGarbageRune(r rune) bool {
	// Private Use Area
	if r >= 0xE000 && r <= 0xF8FF {
		return true
	}
	// Replacement character
	if r == 0xFFFD {
		return true
	}
	// Control chars except whitespace
	if r < 0x0020 && r != '\n' && r != '\r' && r != '\t' {
		return true
	}
	return false
}

// wordlikeRatio returns the ratio of word-like tokens (length 2-15) to total
// tokens. Font-encoding failures produce either single glyphs or very long
// runs, so a low ratio means the text layer is unreadable.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		n := utf8.RuneCountInString(f)
		if n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}
