// CLAUDE:SUMMARY Heuristic English detection: Vietnamese diacritic scan, ASCII ratio, English marker-word count.
package sift

import "strings"

// LanguageDetector identifies the language of a text, returning a lowercase
// ISO 639-1 code ("en", "vi"). Implementations return ErrUnknownLanguage
// when they cannot decide. Detectors must be safe for concurrent use.
type LanguageDetector interface {
	DetectLanguage(text string) (string, error)
}

// vnDiacritics holds every Vietnamese accented letter, both cases. A single
// occurrence rejects a paragraph in the heuristic English check; the scripts
// this tool sees are either English or Vietnamese, so one diacritic is a
// strong signal.
const vnDiacritics = "àáạảãâầấậẩẫăằắặẳẵèéẹẻẽêềếệểễìíịỉĩ" +
	"òóọỏõôồốộổỗơờớợởỡùúụủũưừứựửữỳýỵỷỹđ" +
	"ÀÁẠẢÃÂẦẤẬẨẪĂẰẮẶẲẴÈÉẸẺẼÊỀẾỆỂỄÌÍỊỈĨ" +
	"ÒÓỌỎÕÔỒỐỘỔỖƠỜỚỢỞỠÙÚỤỦŨƯỪỨỰỬỮỲÝỴỶỸĐ"

// englishMarkers mixes high-frequency English function words with the domain
// vocabulary of generation scripts. The heuristic wants englishMarkerMin
// marker tokens in total (repeats count), which short fragments never reach.
var englishMarkers = map[string]struct{}{
	"the": {}, "and": {}, "to": {}, "of": {}, "a": {}, "in": {}, "is": {},
	"that": {}, "for": {}, "on": {}, "with": {}, "as": {}, "by": {},
	"from": {}, "this": {}, "be": {}, "are": {}, "at": {}, "or": {},
	"it": {}, "an": {}, "into": {}, "over": {}, "under": {}, "about": {},
	"can": {},
	"scene": {}, "character": {}, "dialogue": {}, "objective": {},
	"environment": {}, "camera": {}, "lighting": {}, "transition": {},
	"audio": {}, "vfx": {},
}

const englishMarkerMin = 8

// asciiRatio returns the fraction of runes below code point 128. Empty
// strings have ratio 0.
func asciiRatio(s string) float64 {
	total, ascii := 0, 0
	for _, r := range s {
		total++
		if r < 128 {
			ascii++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(ascii) / float64(total)
}

// isEnglishHeuristic applies three cheap gates in order: no Vietnamese
// diacritics, ASCII ratio at or above minRatio, and enough English marker
// tokens.
func isEnglishHeuristic(text string, minRatio float64) bool {
	if strings.ContainsAny(text, vnDiacritics) {
		return false
	}
	if asciiRatio(text) < minRatio {
		return false
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	hits := 0
	for _, w := range words {
		if _, ok := englishMarkers[w]; ok {
			hits++
		}
	}
	return hits >= englishMarkerMin
}
