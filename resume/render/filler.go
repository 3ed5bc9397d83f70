package render

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"cv-generator/resume/model"
)

var (
	// ErrTemplateMissing is returned when the template file cannot be read.
	ErrTemplateMissing = errors.New("template not found")
	// ErrTemplateMalformed is returned for templates that are not a usable DOCX.
	ErrTemplateMalformed = errors.New("template is not a valid docx")
	// ErrPlaceholder is returned when a placeholder or section cannot be filled.
	ErrPlaceholder = errors.New("template placeholder error")
)

const documentPart = "word/document.xml"

// Parts rewritten by the filler.
var fillablePart = regexp.MustCompile(`^word/(document|header[0-9]*|footer[0-9]*)\.xml$`)

// Filler merges form data into a DOCX template.
type Filler struct {
	// TemplatePath points at a .docx on disk; empty uses the embedded default.
	TemplatePath string
}

// Template returns the raw template bytes.
func (f *Filler) Template() ([]byte, error) {
	if f == nil || strings.TrimSpace(f.TemplatePath) == "" {
		return DefaultTemplate()
	}
	data, err := os.ReadFile(filepath.Clean(f.TemplatePath))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateMissing, err)
	}
	return data, nil
}

// Render fills the configured template with form.
func (f *Filler) Render(form model.FormContext) ([]byte, error) {
	tpl, err := f.Template()
	if err != nil {
		return nil, err
	}
	return RenderTemplate(tpl, form.ToTemplateData())
}

// RenderTemplate fills a DOCX template held in memory. Every part other than
// the document body, headers and footers is copied unchanged.
func RenderTemplate(template []byte, data model.TemplateData) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateMalformed, err)
	}
	if !hasPart(reader, documentPart) {
		return nil, fmt.Errorf("%w: missing %s", ErrTemplateMalformed, documentPart)
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	for _, file := range reader.File {
		name := normalizeZipName(file.Name)
		content, err := readZipFile(file)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrTemplateMalformed, name, err)
		}
		if fillablePart.MatchString(name) {
			filled, err := fillPart(string(content), data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			content = []byte(filled)
		}
		if err := writeZipFile(writer, file, name, content); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func fillPart(xmlText string, data model.TemplateData) (string, error) {
	part, err := parsePart(xmlText)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateMalformed, err)
	}
	if err := checkPlaceholders(part.root, data); err != nil {
		return "", err
	}
	expandInlineSections(part.root, data)
	if err := expandBlockSections(part.root, data); err != nil {
		return "", err
	}
	substituteParagraphs(part.root, scalarLookup(data.Scalars))

	out, err := part.encode()
	if err != nil {
		return "", err
	}
	if tok := findRemainingToken(out); tok != "" {
		return "", fmt.Errorf("%w: token remains after filling: %s", ErrPlaceholder, tok)
	}
	return unguard(out), nil
}

func findRemainingToken(xmlText string) string {
	if match := tokenPattern.FindString(xmlText); match != "" {
		return match
	}
	if idx := strings.Index(xmlText, "{{"); idx != -1 {
		return snippet(xmlText[idx:])
	}
	return ""
}

func hasPart(reader *zip.Reader, name string) bool {
	for _, file := range reader.File {
		if normalizeZipName(file.Name) == name {
			return true
		}
	}
	return false
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func writeZipFile(writer *zip.Writer, source *zip.File, name string, content []byte) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   source.Method,
		Modified: source.Modified,
	}
	dst, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}

func normalizeZipName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}
