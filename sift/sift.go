// CLAUDE:SUMMARY Paragraph classifier: ordered threshold gates (length, English, keywords, punctuation) plus a single relaxed fallback pass.
// Package sift decides which paragraphs of a script document are prompt
// blocks and filters everything else out.
//
// The pipeline is stateless and two-stage: Normalize collapses whitespace,
// then a Classifier applies ordered, short-circuiting checks to each
// paragraph (length, English-ness or ASCII ratio, keyword density,
// punctuation density). Filter applies the classifier in document order and,
// when configured, runs a single relaxed pass if the strict pass keeps
// nothing.
//
// Usage:
//
//	c, err := sift.NewClassifier(sift.Config{
//		MinLength:      1000,
//		RequireEnglish: true,
//		Keywords:       sift.DefaultKeywords,
//		MinKeywordHits: 2,
//	})
//	if err != nil { ... }
//	out := c.Filter(paragraphs)
//	fmt.Println(len(out.Prompts), out.FallbackUsed)
package sift

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Classifier applies one validated Config to paragraphs. It is immutable
// after construction and safe for concurrent use.
type Classifier struct {
	cfg      Config
	detector LanguageDetector
	logger   *slog.Logger
	keywords []string // folded, trimmed, blanks removed
}

// Option customises a Classifier.
type Option func(*Classifier)

// WithDetector injects an external language detector, consulted when the
// config sets both RequireEnglish and StrictLanguage. A detector error marks
// the paragraph as not English; it never fails the whole run. Without a
// detector, strict mode falls back to the heuristic.
func WithDetector(d LanguageDetector) Option {
	return func(c *Classifier) { c.detector = d }
}

// WithLogger enables debug output for rejected paragraphs and fallback runs.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) { c.logger = l }
}

// NewClassifier fills threshold defaults, validates cfg and returns a
// ready-to-use classifier. Configuration problems surface here, before any
// scoring starts.
func NewClassifier(cfg Config, opts ...Option) (*Classifier, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Classifier{cfg: cfg}
	for _, o := range opts {
		o(c)
	}
	fold := cases.Fold()
	for _, k := range cfg.Keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		c.keywords = append(c.keywords, fold.String(k))
	}
	return c, nil
}

// Config returns a copy of the effective configuration, defaults applied.
func (c *Classifier) Config() Config { return c.cfg }

// Classify reports whether a normalized paragraph is a prompt block. The
// checks run in a fixed order and the first failure rejects: length, then
// language or ASCII ratio, then keyword density, then punctuation density.
// Classify never mutates its input or the classifier.
func (c *Classifier) Classify(text string) bool {
	if utf8.RuneCountInString(text) < c.cfg.MinLength {
		return false
	}
	if c.cfg.RequireEnglish {
		if !c.isEnglish(text) {
			return false
		}
	} else if c.cfg.MinASCIIRatio > 0 && asciiRatio(text) < c.cfg.MinASCIIRatio {
		return false
	}
	if len(c.keywords) > 0 && c.cfg.MinKeywordHits > 0 {
		if c.keywordHits(text) < c.cfg.MinKeywordHits {
			return false
		}
	}
	if c.cfg.MaxPunctuation > 0 && countSentenceMarks(text) > c.cfg.MaxPunctuation {
		return false
	}
	return true
}

// isEnglish picks the language strategy. Strict mode prefers the injected
// detector; otherwise, and whenever no detector is present, the heuristic
// applies.
func (c *Classifier) isEnglish(text string) bool {
	if c.cfg.StrictLanguage && c.detector != nil {
		lang, err := c.detector.DetectLanguage(text)
		if err != nil {
			if c.logger != nil {
				c.logger.Debug("language detection failed", "error", err)
			}
			return false
		}
		return lang == "en"
	}
	return isEnglishHeuristic(text, c.cfg.MinASCIIRatio)
}

// keywordHits counts how many configured keywords occur in text. Substring
// match, case-folded, one hit per keyword no matter how often it repeats.
func (c *Classifier) keywordHits(text string) int {
	folded := cases.Fold().String(text)
	hits := 0
	for _, k := range c.keywords {
		if strings.Contains(folded, k) {
			hits++
		}
	}
	return hits
}

// countSentenceMarks counts '.', '!' and '?'. A single-block prompt carries
// few of them; narration chopped into short sentences carries many.
func countSentenceMarks(text string) int {
	n := 0
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			n++
		}
	}
	return n
}
