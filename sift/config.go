package sift

import "fmt"

// Tuned defaults. They are configuration, not behavior: every one of them
// can be overridden per run.
const (
	// DefaultEnglishASCIIRatio is the ASCII threshold the English heuristic
	// was tuned with.
	DefaultEnglishASCIIRatio = 0.85

	// DefaultFallbackLengthFloor is the lowest minimum length the relaxed
	// pass will use.
	DefaultFallbackLengthFloor = 300

	// DefaultFallbackLengthScale multiplies the primary minimum length in
	// the relaxed pass.
	DefaultFallbackLengthScale = 0.75

	// DefaultFallbackRatioMargin is subtracted from the primary ASCII ratio
	// in the relaxed pass.
	DefaultFallbackRatioMargin = 0.1

	// DefaultFallbackRatioFloor is the lowest ASCII ratio the relaxed pass
	// will use.
	DefaultFallbackRatioFloor = 0.7
)

// DefaultKeywords are the structural markers of generation-script prompts:
// staging, camera work, audio cues. Matching is case-insensitive.
var DefaultKeywords = []string{
	"objective", "environment", "characters", "props", "dialogue",
	"teamwork", "camera", "lighting", "vfx", "audio", "rhythm",
	"transition", "cta",
}

// Config holds the thresholds for one classification run. Each run supplies
// its own value; a Config is validated once by NewClassifier and never
// mutated afterwards.
type Config struct {
	// MinLength is the minimum paragraph length in Unicode code points.
	MinLength int

	// RequireEnglish enables the English check. When false, the plain
	// ASCII-ratio check applies instead.
	RequireEnglish bool

	// StrictLanguage prefers an injected language detector over the
	// heuristic. Without a detector the heuristic is used regardless.
	StrictLanguage bool

	// MinASCIIRatio is the minimum fraction of characters below code point
	// 128. Zero disables the plain check; with RequireEnglish a zero value
	// defaults to DefaultEnglishASCIIRatio.
	MinASCIIRatio float64

	// Keywords are matched as case-insensitive substrings. Each keyword
	// counts at most once per paragraph.
	Keywords []string

	// MinKeywordHits is how many distinct keywords must match. Zero, or an
	// empty keyword set, disables the check.
	MinKeywordHits int

	// MaxPunctuation caps the number of '.', '!' and '?' in a paragraph.
	// Zero disables the check.
	MaxPunctuation int

	// Fallback controls the relaxed second pass.
	Fallback FallbackConfig
}

// FallbackConfig tunes the relaxed pass that runs when the strict pass keeps
// nothing from a non-empty document. Zero values take the Default* constants.
type FallbackConfig struct {
	// Enabled turns the relaxed pass on.
	Enabled bool

	// MinLengthFloor bounds the relaxed minimum length from below.
	MinLengthFloor int

	// LengthScale multiplies the primary MinLength, in (0, 1]. Zero takes
	// the default.
	LengthScale float64

	// RatioMargin is subtracted from the primary ASCII ratio, in [0, 1].
	RatioMargin float64

	// RatioFloor bounds the relaxed ASCII ratio from below.
	RatioFloor float64
}

// withDefaults returns a copy with zero-valued thresholds replaced by the
// tuned defaults.
func (c Config) withDefaults() Config {
	if c.RequireEnglish && c.MinASCIIRatio == 0 {
		c.MinASCIIRatio = DefaultEnglishASCIIRatio
	}
	if c.Fallback.Enabled {
		if c.Fallback.MinLengthFloor == 0 {
			c.Fallback.MinLengthFloor = DefaultFallbackLengthFloor
		}
		if c.Fallback.LengthScale == 0 {
			c.Fallback.LengthScale = DefaultFallbackLengthScale
		}
		if c.Fallback.RatioMargin == 0 {
			c.Fallback.RatioMargin = DefaultFallbackRatioMargin
		}
		if c.Fallback.RatioFloor == 0 {
			c.Fallback.RatioFloor = DefaultFallbackRatioFloor
		}
	}
	return c
}

// Validate rejects thresholds outside their sane ranges.
func (c *Config) Validate() error {
	if c.MinLength < 0 {
		return fmt.Errorf("%w: min length %d is negative", ErrInvalidConfig, c.MinLength)
	}
	if c.MinASCIIRatio < 0 || c.MinASCIIRatio > 1 {
		return fmt.Errorf("%w: ascii ratio %g outside [0, 1]", ErrInvalidConfig, c.MinASCIIRatio)
	}
	if c.MinKeywordHits < 0 {
		return fmt.Errorf("%w: keyword hits %d is negative", ErrInvalidConfig, c.MinKeywordHits)
	}
	if c.MaxPunctuation < 0 {
		return fmt.Errorf("%w: max punctuation %d is negative", ErrInvalidConfig, c.MaxPunctuation)
	}
	if c.Fallback.Enabled {
		f := c.Fallback
		if f.MinLengthFloor < 0 {
			return fmt.Errorf("%w: fallback length floor %d is negative", ErrInvalidConfig, f.MinLengthFloor)
		}
		if f.LengthScale < 0 || f.LengthScale > 1 {
			return fmt.Errorf("%w: fallback length scale %g outside [0, 1]", ErrInvalidConfig, f.LengthScale)
		}
		if f.RatioMargin < 0 || f.RatioMargin > 1 {
			return fmt.Errorf("%w: fallback ratio margin %g outside [0, 1]", ErrInvalidConfig, f.RatioMargin)
		}
		if f.RatioFloor < 0 || f.RatioFloor > 1 {
			return fmt.Errorf("%w: fallback ratio floor %g outside [0, 1]", ErrInvalidConfig, f.RatioFloor)
		}
	}
	return nil
}

// relaxed derives the configuration for the fallback pass. Minimum length
// and ASCII ratio go down, never up; language, keyword and punctuation
// constraints drop entirely; the derived config never enables a further
// fallback, so relaxed passes cannot chain.
func (c Config) relaxed() Config {
	minLen := int(c.Fallback.LengthScale * float64(c.MinLength))
	if minLen < c.Fallback.MinLengthFloor {
		minLen = c.Fallback.MinLengthFloor
	}
	if minLen > c.MinLength {
		minLen = c.MinLength
	}

	ratio := 0.0
	if c.MinASCIIRatio > 0 {
		ratio = c.MinASCIIRatio - c.Fallback.RatioMargin
		if ratio < c.Fallback.RatioFloor {
			ratio = c.Fallback.RatioFloor
		}
		if ratio > c.MinASCIIRatio {
			ratio = c.MinASCIIRatio
		}
	}

	return Config{MinLength: minLen, MinASCIIRatio: ratio}
}
