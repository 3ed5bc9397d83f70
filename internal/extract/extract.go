package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrNotPDF is returned when converted output is not a PDF document.
var ErrNotPDF = errors.New("output is not a pdf")

// Info summarizes a generated PDF.
type Info struct {
	MIME  string
	Size  int
	Pages int
}

// DetectMIME sniffs the content type of data, telling DOCX apart from plain zip.
func DetectMIME(data []byte) string {
	mtype := mimetype.Detect(data)
	if mtype.Is("application/zip") && hasDocumentPart(data) {
		return MimeDOCX
	}
	return strings.Split(mtype.String(), ";")[0]
}

// InspectPDF checks that data is a PDF and counts its pages. A PDF the
// parser cannot read still passes with Pages set to 0.
func InspectPDF(data []byte) (Info, error) {
	info := Info{MIME: DetectMIME(data), Size: len(data)}
	if info.MIME != MimePDF {
		return info, fmt.Errorf("%w: detected %s", ErrNotPDF, info.MIME)
	}
	if pages, err := pageCount(data); err == nil {
		info.Pages = pages
	}
	return info, nil
}

func pageCount(data []byte) (pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parse panic: %v", rec)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}

// PDFText returns the plain text of a PDF.
func PDFText(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parse panic: %v", rec)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DocxText returns the paragraph text of a DOCX body, one paragraph per line.
func DocxText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	docFile := findDocumentPart(zr)
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}
	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return stripDocxXML(raw)
}

// Text dispatches on the sniffed content type.
func Text(data []byte) (string, error) {
	switch mime := DetectMIME(data); mime {
	case MimePDF:
		return PDFText(data)
	case MimeDOCX:
		return DocxText(data)
	default:
		return "", fmt.Errorf("unsupported mime type: %s", mime)
	}
}

func stripDocxXML(raw []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	var buf strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteString("\t")
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p", "br":
				buf.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func hasDocumentPart(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	return findDocumentPart(zr) != nil
}

func findDocumentPart(zr *zip.Reader) *zip.File {
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return f
		}
	}
	return nil
}
