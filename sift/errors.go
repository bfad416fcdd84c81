package sift

import "errors"

var (
	// ErrInvalidConfig is returned by NewClassifier when a threshold is
	// outside its sane range.
	ErrInvalidConfig = errors.New("sift: invalid config")

	// ErrUnknownLanguage is returned by language detectors that cannot
	// identify the language of a text.
	ErrUnknownLanguage = errors.New("sift: language not identified")
)
