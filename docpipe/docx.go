package docpipe

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// extractDocx reads word/document.xml from the ZIP archive and emits one
// entry per w:p element, in document order; table cells contribute their
// paragraphs where they occur. Tabs and explicit breaks inside runs become
// "\t" and "\n" so they collapse like any other whitespace downstream.
func extractDocx(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var paragraphs []string
	var current strings.Builder
	var inParagraph, inText bool

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			case "tab":
				if inParagraph {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inParagraph {
					current.WriteByte('\n')
				}
			}

		case xml.CharData:
			// Only w:t runs carry document text; field codes and
			// properties are skipped.
			if inText {
				current.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph && strings.TrimSpace(current.String()) != "" {
					paragraphs = append(paragraphs, current.String())
				}
				inParagraph = false
			}
		}
	}

	return paragraphs, nil
}
