package preview

import (
	"encoding/base64"
	"fmt"
	"html"
)

const pdfDataPrefix = "data:application/pdf;base64,"

// Encode returns the standard base64 encoding of data.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode reverses Encode.
func Decode(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}

// DataURI wraps a PDF for inline display.
func DataURI(pdf []byte) string {
	return pdfDataPrefix + Encode(pdf)
}

// IFrame renders the embed markup for a PDF data URI, titled after the file name.
// Both values are HTML-escaped.
func IFrame(name, dataURI string) string {
	title := html.EscapeString(`Preview of converted PDF file "` + name + `"`)
	return fmt.Sprintf(`<iframe src="%s" width="100%%" height="1000" type="application/pdf" title="%s"></iframe>`,
		html.EscapeString(dataURI), title)
}
