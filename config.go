// CLAUDE:SUMMARY YAML service configuration with built-in classification profiles and per-profile validation.
package tamis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/tamis/export"
	"github.com/hazyhaar/tamis/sift"
)

// Config holds the full tamis configuration.
type Config struct {
	Listen    string `yaml:"listen"`
	DBPath    string `yaml:"db_path"`
	MaxFileMB int    `yaml:"max_file_mb"`

	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// DefaultProfile is used when a request names no profile.
	DefaultProfile string `yaml:"default_profile"`

	// Profiles are the named threshold sets. A profile defined in the file
	// replaces the built-in of the same name wholesale.
	Profiles map[string]Profile `yaml:"profiles"`
}

// AuthConfig configures HTTP basic auth on the API.
type AuthConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Username       string `yaml:"username"`
	PasswordBcrypt string `yaml:"password_bcrypt"` // bcrypt hash, never the clear password
}

// RateLimitConfig configures per-IP request limiting.
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	MaxRequests   int  `yaml:"max_requests"`
	WindowSeconds int  `yaml:"window_seconds"`
}

// Profile is one named set of classification thresholds plus the join mode
// used when its prompts are exported as text.
type Profile struct {
	MinLength      int      `yaml:"min_length" json:"min_length"`
	RequireEnglish bool     `yaml:"require_english" json:"require_english"`
	StrictLanguage bool     `yaml:"strict_language" json:"strict_language"`
	MinASCIIRatio  float64  `yaml:"min_ascii_ratio" json:"min_ascii_ratio"`
	Keywords       []string `yaml:"keywords" json:"keywords"`
	MinKeywordHits int      `yaml:"min_keyword_hits" json:"min_keyword_hits"`
	MaxPunctuation int      `yaml:"max_punctuation" json:"max_punctuation"`

	Fallback FallbackProfile `yaml:"fallback" json:"fallback"`

	// Join selects how prompts merge into one text file: "batch" splits
	// every prompt into its lines, "spaced" keeps prompts whole with a
	// blank line between them.
	Join string `yaml:"join" json:"join"`
}

// FallbackProfile tunes the relaxed second pass. Zero thresholds take the
// sift defaults.
type FallbackProfile struct {
	Enabled        bool    `yaml:"enabled" json:"enabled"`
	MinLengthFloor int     `yaml:"min_length_floor" json:"min_length_floor"`
	LengthScale    float64 `yaml:"length_scale" json:"length_scale"`
	RatioMargin    float64 `yaml:"ratio_margin" json:"ratio_margin"`
	RatioFloor     float64 `yaml:"ratio_floor" json:"ratio_floor"`
}

// SiftConfig converts the profile into classifier thresholds.
func (p Profile) SiftConfig() sift.Config {
	return sift.Config{
		MinLength:      p.MinLength,
		RequireEnglish: p.RequireEnglish,
		StrictLanguage: p.StrictLanguage,
		MinASCIIRatio:  p.MinASCIIRatio,
		Keywords:       p.Keywords,
		MinKeywordHits: p.MinKeywordHits,
		MaxPunctuation: p.MaxPunctuation,
		Fallback: sift.FallbackConfig{
			Enabled:        p.Fallback.Enabled,
			MinLengthFloor: p.Fallback.MinLengthFloor,
			LengthScale:    p.Fallback.LengthScale,
			RatioMargin:    p.Fallback.RatioMargin,
			RatioFloor:     p.Fallback.RatioFloor,
		},
	}
}

// JoinMode maps the profile's join setting to an export mode.
func (p Profile) JoinMode() export.JoinMode {
	if p.Join == string(export.ModeSpaced) {
		return export.ModeSpaced
	}
	return export.ModeBatch
}

// DefaultConfig returns sane defaults with two built-in profiles: "english"
// is the strict long-form screener, "general" tolerates shorter mixed text
// and enables the relaxed fallback pass.
func DefaultConfig() *Config {
	return &Config{
		Listen:         ":8090",
		DBPath:         "tamis.db",
		MaxFileMB:      50,
		DefaultProfile: "general",
		RateLimit: RateLimitConfig{
			Enabled:       false,
			MaxRequests:   60,
			WindowSeconds: 60,
		},
		Profiles: map[string]Profile{
			"english": {
				MinLength:      1000,
				RequireEnglish: true,
				StrictLanguage: true,
				Keywords:       sift.DefaultKeywords,
				MinKeywordHits: 2,
				Join:           string(export.ModeBatch),
			},
			"general": {
				MinLength:      400,
				MinASCIIRatio:  0.75,
				Keywords:       sift.DefaultKeywords,
				MinKeywordHits: 3,
				MaxPunctuation: 40,
				Fallback:       FallbackProfile{Enabled: true},
				Join:           string(export.ModeSpaced),
			},
		},
	}
}

// LoadConfig reads and parses a YAML config file. Returns DefaultConfig
// merged with the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that required fields are present and values are sane.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.MaxFileMB <= 0 {
		return fmt.Errorf("max_file_mb must be > 0")
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("at least one profile is required")
	}
	if _, ok := c.Profiles[c.DefaultProfile]; !ok {
		return fmt.Errorf("default_profile %q is not defined", c.DefaultProfile)
	}
	for name, p := range c.Profiles {
		sc := p.SiftConfig()
		if err := sc.Validate(); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
		switch p.Join {
		case "", string(export.ModeBatch), string(export.ModeSpaced):
		default:
			return fmt.Errorf("profile %q: unsupported join mode %q (use batch or spaced)", name, p.Join)
		}
	}
	if c.Auth.Enabled && (c.Auth.Username == "" || c.Auth.PasswordBcrypt == "") {
		return fmt.Errorf("auth: username and password_bcrypt are required when enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowSeconds <= 0) {
		return fmt.Errorf("rate_limit: max_requests and window_seconds must be > 0 when enabled")
	}
	return nil
}

// MaxFileBytes returns the single-file upload cap in bytes.
func (c *Config) MaxFileBytes() int64 { return int64(c.MaxFileMB) * 1024 * 1024 }
