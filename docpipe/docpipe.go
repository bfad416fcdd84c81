// CLAUDE:SUMMARY Dispatches paragraph extraction by document format (docx, odt, pdf, md, txt, html).
// Package docpipe turns uploaded script documents into ordered paragraph
// lists.
//
// Supported formats:
//   - .docx — Microsoft Word (archive/zip → word/document.xml)
//   - .odt  — OpenDocument Text (archive/zip → content.xml)
//   - .pdf  — PDF content streams via pdfcpu, one paragraph per page
//   - .md   — Markdown (blank-line breaks, headings kept as paragraphs)
//   - .txt  — plain text (blank-line breaks)
//   - .html — HTML (sanitized, block elements become paragraphs)
//
// Extraction preserves paragraph order and discards all formatting. A
// paragraph may still carry tabs or embedded line breaks; callers normalize
// before classifying.
//
// Usage:
//
//	pipe := docpipe.New(docpipe.Config{})
//	doc, err := pipe.Extract(ctx, "scene_book.docx", data)
//	fmt.Println(doc.Format, len(doc.Paragraphs))
package docpipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a supported document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatODT  Format = "odt"
	FormatPDF  Format = "pdf"
	FormatMD   Format = "md"
	FormatTXT  Format = "txt"
	FormatHTML Format = "html"
)

var (
	// ErrUnsupportedFormat is returned by Detect for unknown extensions.
	ErrUnsupportedFormat = errors.New("docpipe: unsupported format")

	// ErrFileTooLarge is returned when the input exceeds Config.MaxFileSize.
	ErrFileTooLarge = errors.New("docpipe: file too large")
)

// Document is the result of extracting one file.
type Document struct {
	Name       string   `json:"name"`
	Format     Format   `json:"format"`
	Paragraphs []string `json:"paragraphs"`

	// Warning is set when extraction succeeded but looks degraded, e.g. a
	// scanned PDF with next to no text layer.
	Warning string `json:"warning,omitempty"`
}

// Config tunes the pipeline.
type Config struct {
	// MaxFileSize is the input ceiling in bytes. Default 50 MiB.
	MaxFileSize int64

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 50 << 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Pipeline is the document extraction engine.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	return &Pipeline{cfg: cfg, logger: cfg.Logger}
}

// Detect returns the document format for a file name, by extension.
func (p *Pipeline) Detect(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".docx":
		return FormatDocx, nil
	case ".odt":
		return FormatODT, nil
	case ".pdf":
		return FormatPDF, nil
	case ".md", ".markdown":
		return FormatMD, nil
	case ".txt", ".text":
		return FormatTXT, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Extract parses data as the format named by name and returns the document's
// paragraphs in order.
func (p *Pipeline) Extract(ctx context.Context, name string, data []byte) (*Document, error) {
	if int64(len(data)) > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, len(data), p.cfg.MaxFileSize)
	}

	format, err := p.Detect(name)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("extracting document", "name", name, "format", format, "bytes", len(data))

	var paragraphs []string
	var warning string
	switch format {
	case FormatDocx:
		paragraphs, err = extractDocx(data)
	case FormatODT:
		paragraphs, err = extractODT(data)
	case FormatPDF:
		paragraphs, warning, err = extractPDF(ctx, data)
	case FormatMD:
		paragraphs = extractMarkdown(data)
	case FormatTXT:
		paragraphs = extractPlain(data)
	case FormatHTML:
		paragraphs, err = extractHTML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", name, format, err)
	}

	return &Document{
		Name:       name,
		Format:     format,
		Paragraphs: paragraphs,
		Warning:    warning,
	}, nil
}

// ExtractFile reads path from disk and extracts it.
func (p *Pipeline) ExtractFile(ctx context.Context, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, info.Size(), p.cfg.MaxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Extract(ctx, filepath.Base(path), data)
}

// SupportedFormats returns all supported format extensions.
func SupportedFormats() []string {
	return []string{"docx", "odt", "pdf", "md", "txt", "html"}
}
