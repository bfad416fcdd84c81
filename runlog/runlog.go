// Package runlog persists sift run history to SQLite.
//
// Writes are asynchronous: the HTTP and MCP surfaces queue a Run per
// processed document and the store flushes batches in the background, so a
// slow disk never blocks a response. History powers the /v1/runs endpoint
// and the health totals.
package runlog

import (
	"time"
)

// Schema for the sift_runs table. Call Store.Init() or apply manually.
const Schema = `
CREATE TABLE IF NOT EXISTS sift_runs (
	run_id TEXT PRIMARY KEY,
	document TEXT NOT NULL,
	format TEXT NOT NULL,
	profile TEXT NOT NULL,
	paragraphs INTEGER NOT NULL,
	prompts INTEGER NOT NULL,
	fallback_used INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sift_runs_created ON sift_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_sift_runs_profile ON sift_runs(profile);
`

// Run is one processed document: what came in, what survived, how long it
// took. Error is set when extraction or classification failed; such runs
// still count toward history.
type Run struct {
	RunID        string    `json:"run_id"`
	Document     string    `json:"document"`
	Format       string    `json:"format"`
	Profile      string    `json:"profile"`
	Paragraphs   int       `json:"paragraphs"`
	Prompts      int       `json:"prompts"`
	FallbackUsed bool      `json:"fallback_used"`
	DurationMs   int64     `json:"duration_ms"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Totals aggregates the whole run history for health reporting.
type Totals struct {
	Runs      int64 `json:"runs"`
	Prompts   int64 `json:"prompts"`
	Fallbacks int64 `json:"fallbacks"`
	Errors    int64 `json:"errors"`
}
