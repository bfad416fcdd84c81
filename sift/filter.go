package sift

// Outcome is the result of filtering one document's paragraphs.
type Outcome struct {
	// Prompts holds the accepted paragraphs, normalized, in their original
	// relative order. Never reordered, never deduplicated.
	Prompts []string

	// FallbackUsed is true when Prompts came from the relaxed pass.
	FallbackUsed bool

	// Scanned counts the non-empty normalized paragraphs that were
	// classified.
	Scanned int
}

// Filter normalizes paragraphs, drops the empties and classifies the rest in
// order. When the strict pass keeps nothing, the document was not empty and
// the fallback is enabled, one relaxed pass reruns the same paragraphs with
// lowered length and ASCII thresholds and no language, keyword or
// punctuation constraints. The relaxed pass never chains into another, and
// an empty document never triggers it: there is nothing to relax against.
func (c *Classifier) Filter(paragraphs []string) Outcome {
	normalized := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if n := Normalize(p); n != "" {
			normalized = append(normalized, n)
		}
	}

	out := Outcome{Scanned: len(normalized)}
	for _, p := range normalized {
		if c.Classify(p) {
			out.Prompts = append(out.Prompts, p)
		}
	}
	if len(out.Prompts) > 0 || len(normalized) == 0 || !c.cfg.Fallback.Enabled {
		return out
	}

	relaxed := &Classifier{cfg: c.cfg.relaxed(), logger: c.logger}
	for _, p := range normalized {
		if relaxed.Classify(p) {
			out.Prompts = append(out.Prompts, p)
		}
	}
	out.FallbackUsed = len(out.Prompts) > 0
	if out.FallbackUsed && c.logger != nil {
		c.logger.Debug("relaxed pass engaged",
			"kept", len(out.Prompts),
			"min_length", relaxed.cfg.MinLength,
			"min_ascii_ratio", relaxed.cfg.MinASCIIRatio)
	}
	return out
}

// Filter is a convenience wrapper that builds a one-shot classifier.
func Filter(paragraphs []string, cfg Config, opts ...Option) (Outcome, error) {
	c, err := NewClassifier(cfg, opts...)
	if err != nil {
		return Outcome{}, err
	}
	return c.Filter(paragraphs), nil
}
