package render

import (
	"archive/zip"
	"bytes"
	"embed"
	"time"
)

//go:embed assets/default/*.xml
var defaultAssets embed.FS

// The embedded files use plain names; this maps them to their package paths.
var defaultParts = []struct {
	asset string
	name  string
}{
	{"content_types.xml", "[Content_Types].xml"},
	{"rels.xml", "_rels/.rels"},
	{"document.xml", "word/document.xml"},
	{"document_rels.xml", "word/_rels/document.xml.rels"},
	{"styles.xml", "word/styles.xml"},
}

// DefaultTemplate assembles the built-in CV template.
func DefaultTemplate() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	modified := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, part := range defaultParts {
		data, err := defaultAssets.ReadFile("assets/default/" + part.asset)
		if err != nil {
			return nil, err
		}
		f, err := w.CreateHeader(&zip.FileHeader{Name: part.name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
