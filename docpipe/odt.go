// CLAUDE:SUMMARY Extracts paragraphs from .odt (OpenDocument) files by parsing content.xml from the ZIP archive.
package docpipe

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// extractODT reads content.xml from the ZIP archive and emits one entry per
// text:p or text:h element. ODT encodes whitespace runs as elements
// (text:s, text:tab, text:line-break); they are restored as characters here
// and collapse downstream.
func extractODT(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var contentFile *zip.File
	for _, f := range zr.File {
		if f.Name == "content.xml" {
			contentFile = f
			break
		}
	}
	if contentFile == nil {
		return nil, fmt.Errorf("content.xml not found in archive")
	}

	rc, err := contentFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open content.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var paragraphs []string
	var current strings.Builder
	var inBlock bool

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p", "h": // <text:p>, <text:h>
				inBlock = true
				current.Reset()
			case "tab":
				if inBlock {
					current.WriteByte('\t')
				}
			case "line-break":
				if inBlock {
					current.WriteByte('\n')
				}
			case "s": // <text:s text:c="3"/> encodes a run of spaces
				if inBlock {
					count := 1
					for _, attr := range t.Attr {
						if attr.Name.Local == "c" {
							if n, err := strconv.Atoi(attr.Value); err == nil && n > 0 {
								count = n
							}
						}
					}
					current.WriteString(strings.Repeat(" ", count))
				}
			}

		case xml.CharData:
			if inBlock {
				current.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "p", "h":
				if inBlock && strings.TrimSpace(current.String()) != "" {
					paragraphs = append(paragraphs, current.String())
				}
				inBlock = false
			}
		}
	}

	return paragraphs, nil
}
