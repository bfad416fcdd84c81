package docpipe

import "strings"

// extractPlain splits a text file into paragraphs on blank lines.
func extractPlain(data []byte) []string {
	return splitParagraphs(string(data))
}

// extractMarkdown splits Markdown into paragraphs. ATX headings become their
// own paragraphs; continuation lines merge into the paragraph they belong
// to. No inline markup is interpreted.
func extractMarkdown(data []byte) []string {
	lines := strings.Split(string(data), "\n")
	var paragraphs []string
	var current strings.Builder

	flush := func() {
		if text := strings.TrimSpace(current.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
		current.Reset()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// ATX headings: # heading, ## heading, with optional closing #'s.
		if strings.HasPrefix(trimmed, "#") {
			flush()
			heading := strings.TrimSpace(strings.TrimRight(strings.TrimLeft(trimmed, "#"), "#"))
			if heading != "" {
				paragraphs = append(paragraphs, heading)
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(trimmed)
	}
	flush()

	return paragraphs
}

// splitParagraphs splits text on blank lines, tolerating CRLF and bare CR
// line endings. Lines inside a paragraph keep their breaks; normalization
// collapses them downstream.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var paragraphs []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}
	return paragraphs
}
