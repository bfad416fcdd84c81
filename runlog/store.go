// CLAUDE:SUMMARY Async SQLite store for sift run history — buffered channel, batched flush loop, graceful drain on Close.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/tamis/dbopen"
	"github.com/hazyhaar/tamis/idgen"
)

const insertSQL = `INSERT INTO sift_runs
	(run_id, document, format, profile, paragraphs, prompts, fallback_used, duration_ms, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Store persists runs to a SQLite table, batching asynchronous writes in a
// background goroutine.
type Store struct {
	db     *sql.DB
	newID  idgen.Generator
	logger *slog.Logger
	ch     chan *Run
	done   chan struct{}
	once   sync.Once
}

// Option customises a Store.
type Option func(*Store)

// WithIDGenerator sets the generator for run IDs. Default: idgen.Default.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger for flush failures. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a run store backed by the given database connection and
// starts its flush goroutine. Call Close to drain pending writes.
func NewStore(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		newID:  idgen.Default,
		logger: slog.Default(),
		ch:     make(chan *Run, 1024),
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	go s.flushLoop()
	return s
}

// Init creates the sift_runs table if it doesn't exist.
func (s *Store) Init() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("runlog: init schema: %w", err)
	}
	return nil
}

// RecordAsync queues a run for async persistence, assigning RunID and
// CreatedAt if unset. Non-blocking; drops if the buffer is full.
func (s *Store) RecordAsync(r *Run) {
	s.stamp(r)
	select {
	case s.ch <- r:
	default:
		// buffer full — drop rather than backpressure the request path
	}
}

// Record persists a run synchronously, assigning RunID and CreatedAt if
// unset. Use when the caller needs the row committed before returning.
func (s *Store) Record(ctx context.Context, r *Run) error {
	s.stamp(r)
	if _, err := dbopen.Exec(ctx, s.db, insertSQL, runArgs(r)...); err != nil {
		return fmt.Errorf("runlog: record run %s: %w", r.RunID, err)
	}
	return nil
}

// Close drains the buffer and stops the flush goroutine.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.ch)
		<-s.done
	})
	return nil
}

func (s *Store) stamp(r *Run) {
	if r.RunID == "" {
		r.RunID = s.newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

func (s *Store) flushLoop() {
	defer close(s.done)

	batch := make([]*Run, 0, 64)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case r, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, r)
			if len(batch) >= 64 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Store) flushBatch(batch []*Run) {
	if len(batch) == 0 {
		return
	}

	err := dbopen.RunTx(context.Background(), s.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(insertSQL)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range batch {
			if _, err := stmt.Exec(runArgs(r)...); err != nil {
				s.logger.Error("runlog: insert run", "run_id", r.RunID, "error", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("runlog: flush batch", "count", len(batch), "error", err)
	}
}

func runArgs(r *Run) []any {
	fb := 0
	if r.FallbackUsed {
		fb = 1
	}
	return []any{
		r.RunID, r.Document, r.Format, r.Profile,
		r.Paragraphs, r.Prompts, fb, r.DurationMs,
		r.Error, r.CreatedAt.Unix(),
	}
}
