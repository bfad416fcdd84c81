package docpipe

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// makeZipDoc builds an in-memory ZIP with a single named entry, enough to
// pose as a .docx or .odt container.
func makeZipDoc(t *testing.T, entry, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(entry)
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		file string
		want Format
		ok   bool
	}{
		{"docx", "script.docx", FormatDocx, true},
		{"odt", "script.odt", FormatODT, true},
		{"pdf", "script.pdf", FormatPDF, true},
		{"md", "notes.md", FormatMD, true},
		{"markdown", "notes.markdown", FormatMD, true},
		{"txt", "notes.txt", FormatTXT, true},
		{"html", "page.html", FormatHTML, true},
		{"htm", "page.htm", FormatHTML, true},
		{"uppercase", "SCRIPT.DOCX", FormatDocx, true},
		{"unknown", "archive.xyz", "", false},
		{"no extension", "README", "", false},
	}
	pipe := New(Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pipe.Detect(tt.file)
			if tt.ok {
				if err != nil {
					t.Fatalf("Detect(%q): %v", tt.file, err)
				}
				if got != tt.want {
					t.Errorf("Detect(%q) = %q, want %q", tt.file, got, tt.want)
				}
				return
			}
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("Detect(%q) = %v, want ErrUnsupportedFormat", tt.file, err)
			}
		})
	}
}

func TestExtractDocx(t *testing.T) {
	// WHAT: DOCX paragraphs come out in order; tabs and breaks inside runs
	// become characters; field codes and blank paragraphs are dropped.
	// WHY: The classifier measures paragraph length, so run boundaries and
	// instruction text must not leak into or split the text.
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:instrText>HYPERLINK "x"</w:instrText></w:r><w:r><w:t>Scene overview.</w:t></w:r></w:p>
<w:p><w:r><w:t>Objective:</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>hold the line</w:t></w:r></w:p>
<w:p><w:r><w:t>line one</w:t><w:br/><w:t>line two</w:t></w:r></w:p>
<w:p><w:r><w:t>   </w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell paragraph</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
</w:body>
</w:document>`
	data := makeZipDoc(t, "word/document.xml", documentXML)

	pipe := New(Config{})
	doc, err := pipe.Extract(context.Background(), "scenes.docx", data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{
		"Scene overview.",
		"Objective:\thold the line",
		"line one\nline two",
		"cell paragraph",
	}
	if !reflect.DeepEqual(doc.Paragraphs, want) {
		t.Errorf("paragraphs = %q, want %q", doc.Paragraphs, want)
	}
	if doc.Format != FormatDocx {
		t.Errorf("format = %q, want docx", doc.Format)
	}
	if doc.Warning != "" {
		t.Errorf("unexpected warning %q", doc.Warning)
	}
}

func TestExtractDocxMissingDocumentXML(t *testing.T) {
	data := makeZipDoc(t, "word/other.xml", "<x/>")
	pipe := New(Config{})
	if _, err := pipe.Extract(context.Background(), "broken.docx", data); err == nil {
		t.Fatal("expected error for archive without word/document.xml")
	}
}

func TestExtractDocxNotAZip(t *testing.T) {
	pipe := New(Config{})
	if _, err := pipe.Extract(context.Background(), "broken.docx", []byte("plain text")); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestExtractODT(t *testing.T) {
	contentXML := `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content
  xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
<office:body><office:text>
<text:h text:outline-level="1">Heading</text:h>
<text:p>alpha<text:s text:c="3"/>beta</text:p>
<text:p>one<text:line-break/>two<text:tab/>three</text:p>
<text:p>   </text:p>
</office:text></office:body>
</office:document-content>`
	data := makeZipDoc(t, "content.xml", contentXML)

	pipe := New(Config{})
	doc, err := pipe.Extract(context.Background(), "scenes.odt", data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{
		"Heading",
		"alpha   beta",
		"one\ntwo\tthree",
	}
	if !reflect.DeepEqual(doc.Paragraphs, want) {
		t.Errorf("paragraphs = %q, want %q", doc.Paragraphs, want)
	}
}

func TestExtractPlain(t *testing.T) {
	data := []byte("first line\r\nsecond line\r\n\r\nnext paragraph\n\n\n\nlast one")
	pipe := New(Config{})
	doc, err := pipe.Extract(context.Background(), "notes.txt", data)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{
		"first line\nsecond line",
		"next paragraph",
		"last one",
	}
	if !reflect.DeepEqual(doc.Paragraphs, want) {
		t.Errorf("paragraphs = %q, want %q", doc.Paragraphs, want)
	}
}

func TestExtractMarkdown(t *testing.T) {
	md := "# Title\n\nFirst para line one\nline two\n\n## Section ##\nSecond para\n\n- item stays inline\n"
	pipe := New(Config{})
	doc, err := pipe.Extract(context.Background(), "notes.md", []byte(md))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{
		"Title",
		"First para line one line two",
		"Section",
		"Second para",
		"- item stays inline",
	}
	if !reflect.DeepEqual(doc.Paragraphs, want) {
		t.Errorf("paragraphs = %q, want %q", doc.Paragraphs, want)
	}
}

func TestExtractSizeLimit(t *testing.T) {
	pipe := New(Config{MaxFileSize: 8})
	_, err := pipe.Extract(context.Background(), "big.txt", []byte("123456789"))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("Extract = %v, want ErrFileTooLarge", err)
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenes.txt")
	if err := os.WriteFile(path, []byte("one\n\ntwo"), 0o644); err != nil {
		t.Fatal(err)
	}
	pipe := New(Config{})
	doc, err := pipe.ExtractFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if doc.Name != "scenes.txt" {
		t.Errorf("name = %q, want scenes.txt", doc.Name)
	}
	if len(doc.Paragraphs) != 2 {
		t.Errorf("got %d paragraphs, want 2", len(doc.Paragraphs))
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	if len(formats) != 6 {
		t.Fatalf("got %d formats, want 6", len(formats))
	}
	pipe := New(Config{})
	for _, f := range formats {
		if _, err := pipe.Detect("file." + f); err != nil {
			t.Errorf("advertised format %q not detected: %v", f, err)
		}
	}
}
