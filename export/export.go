// Package export serializes accepted prompts into downloadable artifacts:
// plain-text blobs, derived file names, and ZIP bundles for batch runs.
package export

import (
	"path/filepath"
	"strings"
	"time"
)

// JoinMode selects how accepted prompts are serialized into one text blob.
type JoinMode string

const (
	// ModeBatch emits one prompt per line: internal blank lines are
	// dropped and prompts follow each other directly, ready for bulk
	// ingestion by downstream generators.
	ModeBatch JoinMode = "batch"

	// ModeSpaced separates prompts with one blank line, keeping the output
	// readable for manual review.
	ModeSpaced JoinMode = "spaced"
)

// Join serializes prompts according to mode. Unknown modes serialize like
// ModeBatch.
func Join(prompts []string, mode JoinMode) string {
	switch mode {
	case ModeSpaced:
		return strings.Join(prompts, "\n\n")
	default:
		var lines []string
		for _, p := range prompts {
			for _, ln := range strings.Split(p, "\n") {
				if strings.TrimSpace(ln) != "" {
					lines = append(lines, ln)
				}
			}
		}
		return strings.Join(lines, "\n")
	}
}

// TxtName derives the download name for a sifted document: the base name
// with its extension swapped for .txt. Path separators from either OS are
// stripped so uploaded names cannot escape into directories; an empty base
// falls back to "prompts".
func TxtName(original string) string {
	base := original
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.TrimSpace(base)
	if base == "" || base == "." || base == ".." {
		base = "prompts"
	}
	return base + ".txt"
}

// TimestampedTxtName is TxtName with the run time embedded, for callers that
// save multiple runs of the same document side by side.
func TimestampedTxtName(original string, now time.Time) string {
	name := TxtName(original)
	base := strings.TrimSuffix(name, ".txt")
	return base + "_" + now.Format("20060102_150405") + ".txt"
}
