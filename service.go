// CLAUDE:SUMMARY Main Service orchestrator: profile resolution, extract-then-sift runs, history recording.
package tamis

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/hazyhaar/tamis/docpipe"
	"github.com/hazyhaar/tamis/runlog"
	"github.com/hazyhaar/tamis/sift"
)

// Service is the main tamis orchestrator.
type Service struct {
	cfg      *Config
	pipe     *docpipe.Pipeline
	detector sift.LanguageDetector // optional — strict profiles use the heuristic without it
	runs     *runlog.Store         // optional — run history
	logger   *slog.Logger
}

// ServiceOption configures optional Service dependencies.
type ServiceOption func(*Service)

// WithRunLog records every run in the given history store.
func WithRunLog(s *runlog.Store) ServiceOption {
	return func(svc *Service) { svc.runs = s }
}

// WithDetector wires an external language detector for strict profiles.
func WithDetector(d sift.LanguageDetector) ServiceOption {
	return func(svc *Service) { svc.detector = d }
}

// NewService creates a tamis Service.
func NewService(cfg *Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	svc := &Service{
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(svc)
	}

	svc.pipe = docpipe.New(docpipe.Config{
		MaxFileSize: cfg.MaxFileBytes(),
		Logger:      logger,
	})
	return svc, nil
}

// Result is the outcome of sifting one document.
type Result struct {
	Document     string   `json:"document"`
	Format       string   `json:"format"`
	Profile      string   `json:"profile"`
	Scanned      int      `json:"paragraphs"`
	Prompts      []string `json:"prompts"`
	Count        int      `json:"count"`
	FallbackUsed bool     `json:"fallback_used"`
	Warning      string   `json:"warning,omitempty"`
	DurationMs   int64    `json:"duration_ms"`
}

// Overrides adjusts profile thresholds for a single run. Nil fields keep the
// profile value; a non-nil Keywords slice replaces the profile's keywords.
type Overrides struct {
	MinLength      *int
	MinASCIIRatio  *float64
	MinKeywordHits *int
	MaxPunctuation *int
	RequireEnglish *bool
	Fallback       *bool
	Keywords       []string
}

func (o Overrides) apply(cfg sift.Config) sift.Config {
	if o.MinLength != nil {
		cfg.MinLength = *o.MinLength
	}
	if o.MinASCIIRatio != nil {
		cfg.MinASCIIRatio = *o.MinASCIIRatio
	}
	if o.MinKeywordHits != nil {
		cfg.MinKeywordHits = *o.MinKeywordHits
	}
	if o.MaxPunctuation != nil {
		cfg.MaxPunctuation = *o.MaxPunctuation
	}
	if o.RequireEnglish != nil {
		cfg.RequireEnglish = *o.RequireEnglish
	}
	if o.Fallback != nil {
		cfg.Fallback.Enabled = *o.Fallback
	}
	if o.Keywords != nil {
		cfg.Keywords = o.Keywords
	}
	return cfg
}

// SiftDocument extracts paragraphs from an in-memory document and filters
// them through the named profile. Failed runs are recorded in the history
// alongside successful ones.
func (svc *Service) SiftDocument(ctx context.Context, name string, data []byte, profile string, over Overrides) (*Result, error) {
	start := time.Now()
	prof, profName, err := svc.profile(profile)
	if err != nil {
		return nil, err
	}

	doc, err := svc.pipe.Extract(ctx, name, data)
	if err != nil {
		svc.recordError(name, profName, start, err)
		return nil, err
	}
	return svc.finish(start, prof, profName, doc, over)
}

// SiftFile reads a document from disk and filters it through the named
// profile. This is the MCP file surface; the HTTP API uploads bytes instead.
func (svc *Service) SiftFile(ctx context.Context, path, profile string, over Overrides) (*Result, error) {
	start := time.Now()
	prof, profName, err := svc.profile(profile)
	if err != nil {
		return nil, err
	}

	doc, err := svc.pipe.ExtractFile(ctx, path)
	if err != nil {
		svc.recordError(filepath.Base(path), profName, start, err)
		return nil, err
	}
	return svc.finish(start, prof, profName, doc, over)
}

// SiftParagraphs filters already-split paragraphs through the named profile.
func (svc *Service) SiftParagraphs(ctx context.Context, paragraphs []string, profile string, over Overrides) (*Result, error) {
	start := time.Now()
	prof, profName, err := svc.profile(profile)
	if err != nil {
		return nil, err
	}

	doc := &docpipe.Document{Name: "inline", Format: docpipe.FormatTXT, Paragraphs: paragraphs}
	return svc.finish(start, prof, profName, doc, over)
}

// ProfileNames lists the configured profile names, sorted.
func (svc *Service) ProfileNames() []string {
	names := make([]string, 0, len(svc.cfg.Profiles))
	for name := range svc.cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (svc *Service) finish(start time.Time, prof Profile, profName string, doc *docpipe.Document, over Overrides) (*Result, error) {
	cfg := over.apply(prof.SiftConfig())

	opts := []sift.Option{sift.WithLogger(svc.logger)}
	if svc.detector != nil {
		opts = append(opts, sift.WithDetector(svc.detector))
	}

	out, err := sift.Filter(doc.Paragraphs, cfg, opts...)
	if err != nil {
		svc.recordError(doc.Name, profName, start, err)
		return nil, err
	}

	res := &Result{
		Document:     doc.Name,
		Format:       string(doc.Format),
		Profile:      profName,
		Scanned:      out.Scanned,
		Prompts:      out.Prompts,
		Count:        len(out.Prompts),
		FallbackUsed: out.FallbackUsed,
		Warning:      doc.Warning,
		DurationMs:   time.Since(start).Milliseconds(),
	}
	if res.Prompts == nil {
		res.Prompts = []string{}
	}

	svc.record(&runlog.Run{
		Document:     res.Document,
		Format:       res.Format,
		Profile:      res.Profile,
		Paragraphs:   res.Scanned,
		Prompts:      res.Count,
		FallbackUsed: res.FallbackUsed,
		DurationMs:   res.DurationMs,
	})

	svc.logger.Info("sift run",
		"document", res.Document,
		"profile", res.Profile,
		"paragraphs", res.Scanned,
		"prompts", res.Count,
		"fallback", res.FallbackUsed,
		"duration_ms", res.DurationMs)

	return res, nil
}

// profile resolves a profile name, falling back to the configured default
// when the name is empty.
func (svc *Service) profile(name string) (Profile, string, error) {
	if name == "" {
		name = svc.cfg.DefaultProfile
	}
	p, ok := svc.cfg.Profiles[name]
	if !ok {
		return Profile{}, "", fmt.Errorf("%w: %s", ErrUnknownProfile, name)
	}
	return p, name, nil
}

func (svc *Service) record(r *runlog.Run) {
	if svc.runs == nil {
		return
	}
	svc.runs.RecordAsync(r)
}

func (svc *Service) recordError(document, profile string, start time.Time, err error) {
	svc.record(&runlog.Run{
		Document:   document,
		Profile:    profile,
		Error:      err.Error(),
		DurationMs: time.Since(start).Milliseconds(),
	})
}
