package web

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageTemplate is the name the form page is registered under.
const PageTemplate = "index.html"

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	funcs := template.FuncMap{
		"list": func(items ...any) []any { return items },
	}
	return template.Must(template.New("web").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// RenderMarkdown converts the summary to HTML. Raw HTML in the input is dropped.
func RenderMarkdown(md string) template.HTML {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
