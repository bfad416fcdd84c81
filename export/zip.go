package export

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// File is one entry of a batch bundle.
type File struct {
	Name string
	Data []byte
}

// Bundle writes files into a ZIP archive on w, preserving order. Duplicate
// names get a numeric suffix so every entry stays addressable after
// extraction.
func Bundle(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(files))
	for _, f := range files {
		name := f.Name
		if n := seen[f.Name]; n > 0 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n+1, ext)
		}
		seen[f.Name]++
		fw, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("export: create %s: %w", name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			zw.Close()
			return fmt.Errorf("export: write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: close bundle: %w", err)
	}
	return nil
}
