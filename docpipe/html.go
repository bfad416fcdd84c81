// CLAUDE:SUMMARY HTML paragraph extraction: bluemonday sanitization, then a block-level DOM walk.
package docpipe

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// htmlPolicy strips scripts, embeds and event handlers before the DOM walk.
// Every block element the walk collects is allowed explicitly, and style
// attributes are kept on purpose: the walk needs them to drop blocks hidden
// by CSS.
var htmlPolicy = bluemonday.UGCPolicy().
	AllowElements("h1", "h2", "h3", "h4", "h5", "h6", "table", "tr", "td", "th").
	AllowAttrs("style").Globally()

var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
	regexp.MustCompile(`(?i)font-size\s*:\s*0[^1-9]`),
	regexp.MustCompile(`(?i)opacity\s*:\s*0[^.]`),
}

func hasHiddenStyle(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "style" {
			for _, pat := range hiddenStylePatterns {
				if pat.MatchString(a.Val) {
					return true
				}
			}
		}
	}
	return false
}

// extractHTML sanitizes markup and emits one paragraph per block element.
// Documents without block structure degrade to a single paragraph of all
// visible text.
func extractHTML(data []byte) ([]string, error) {
	clean := htmlPolicy.SanitizeBytes(data)
	doc, err := html.Parse(bytes.NewReader(clean))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var paragraphs []string
	walkHTMLBlocks(doc, &paragraphs)

	if len(paragraphs) == 0 {
		if text := collectHTMLText(doc); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}
	return paragraphs, nil
}

// walkHTMLBlocks walks the DOM and collects the text of block-level
// elements: paragraphs, headings, list items, blockquotes, preformatted
// blocks and table cells.
func walkHTMLBlocks(n *html.Node, out *[]string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Footer, atom.Header:
			return
		}
		if hasHiddenStyle(n) {
			return
		}

		switch n.DataAtom {
		case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
			atom.Li, atom.Blockquote, atom.Pre, atom.Td, atom.Th:
			if text := collectHTMLText(n); text != "" {
				*out = append(*out, text)
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTMLBlocks(c, out)
	}
}

// collectHTMLText extracts all visible text from a node subtree.
func collectHTMLText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
			if hasHiddenStyle(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
