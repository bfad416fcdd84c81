// Package langid adapts the lingua statistical language identifier to the
// sift.LanguageDetector interface. Building a Detector loads language models
// lazily; construct one per process and share it.
package langid

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/hazyhaar/tamis/sift"
)

// candidates keeps the model set small: English and Vietnamese are the two
// languages the scripts actually arrive in, the rest guard against false
// English positives on other Latin-script text.
var candidates = []lingua.Language{
	lingua.English,
	lingua.Vietnamese,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Dutch,
}

// Detector wraps a lingua detector. Safe for concurrent use.
type Detector struct {
	inner lingua.LanguageDetector
}

var _ sift.LanguageDetector = (*Detector)(nil)

// New builds a detector over the candidate language set.
func New() *Detector {
	return &Detector{
		inner: lingua.NewLanguageDetectorBuilder().
			FromLanguages(candidates...).
			Build(),
	}
}

// DetectLanguage returns the lowercase ISO 639-1 code for text, or
// sift.ErrUnknownLanguage when lingua cannot decide.
func (d *Detector) DetectLanguage(text string) (string, error) {
	lang, ok := d.inner.DetectLanguageOf(text)
	if !ok {
		return "", sift.ErrUnknownLanguage
	}
	return strings.ToLower(lang.IsoCode639_1().String()), nil
}
