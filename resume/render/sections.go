package render

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"

	"cv-generator/resume/model"
)

// Placeholders look like {{name}}, sections like {{#name}} … {{/name}}.
// Whitespace inside the braces is tolerated.
var tokenPattern = regexp.MustCompile(`{{\s*([#/]?)\s*([^{}\s#/]+)\s*}}`)

// braceGuard stands in for '{' inside substituted values so user text is
// never read back as a placeholder. It is swapped back after encoding.
const braceGuard = "\uE000"

type tokenKind int

const (
	tokenValue tokenKind = iota
	tokenOpen
	tokenClose
)

type token struct {
	kind       tokenKind
	name       string
	raw        string
	start, end int
}

func parseTokens(text string) []token {
	locs := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	out := make([]token, 0, len(locs))
	for _, l := range locs {
		t := token{raw: text[l[0]:l[1]], name: text[l[4]:l[5]], start: l[0], end: l[1]}
		switch text[l[2]:l[3]] {
		case "#":
			t.kind = tokenOpen
		case "/":
			t.kind = tokenClose
		}
		out = append(out, t)
	}
	return out
}

func guard(value string) string {
	return strings.ReplaceAll(value, "{", braceGuard)
}

func unguard(text string) string {
	return strings.ReplaceAll(text, braceGuard, "{")
}

// checkPlaceholders walks paragraphs in document order and fails on any
// placeholder the data cannot fill, on unbalanced or nested sections and on
// stray braces.
func checkPlaceholders(root *xmlNode, data model.TemplateData) error {
	var open []string
	err := eachParagraph(root, func(p *xmlNode) error {
		text := paragraphText(p)
		tokens := parseTokens(text)
		if strings.Count(text, "{{") > len(tokens) {
			return fmt.Errorf("%w: malformed placeholder near %q", ErrPlaceholder, snippet(text))
		}
		for _, tok := range tokens {
			switch tok.kind {
			case tokenOpen:
				if len(open) > 0 {
					return fmt.Errorf("%w: section %s opened inside {{#%s}}", ErrPlaceholder, tok.raw, open[0])
				}
				if !data.HasSection(tok.name) {
					return fmt.Errorf("%w: unknown section %s", ErrPlaceholder, tok.raw)
				}
				open = append(open, tok.name)
			case tokenClose:
				if len(open) == 0 || open[0] != tok.name {
					return fmt.Errorf("%w: unexpected %s", ErrPlaceholder, tok.raw)
				}
				open = open[:0]
			default:
				if len(open) > 0 && data.SectionHasField(open[0], tok.name) {
					continue
				}
				if _, ok := data.Scalars[tok.name]; ok {
					continue
				}
				return fmt.Errorf("%w: no value for %s", ErrPlaceholder, tok.raw)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(open) > 0 {
		return fmt.Errorf("%w: section {{#%s}} is never closed", ErrPlaceholder, open[0])
	}
	return nil
}

func snippet(text string) string {
	idx := strings.Index(text, "{{")
	if idx < 0 {
		return text
	}
	end := idx + 40
	if end > len(text) {
		end = len(text)
	}
	return text[idx:end]
}

type lookupFunc func(name string) (string, bool)

func itemLookup(item map[string]string, scalars map[string]string) lookupFunc {
	return func(name string) (string, bool) {
		if v, ok := item[name]; ok {
			return v, true
		}
		v, ok := scalars[name]
		return v, ok
	}
}

func scalarLookup(scalars map[string]string) lookupFunc {
	return func(name string) (string, bool) {
		v, ok := scalars[name]
		return v, ok
	}
}

// substitute replaces value placeholders in a single pass, so a substituted
// value is never scanned again.
func substitute(text string, lookup lookupFunc) string {
	tokens := parseTokens(text)
	if len(tokens) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, tok := range tokens {
		if tok.kind != tokenValue {
			continue
		}
		value, ok := lookup(tok.name)
		if !ok {
			continue
		}
		b.WriteString(text[last:tok.start])
		b.WriteString(guard(value))
		last = tok.end
	}
	b.WriteString(text[last:])
	return b.String()
}

func substituteParagraphs(root *xmlNode, lookup lookupFunc) {
	_ = eachParagraph(root, func(p *xmlNode) error {
		text := paragraphText(p)
		if updated := substitute(text, lookup); updated != text {
			setParagraphText(p, updated)
		}
		return nil
	})
}

// expandInlineSections repeats the text between {{#name}} and {{/name}} when
// both markers sit in the same paragraph.
func expandInlineSections(root *xmlNode, data model.TemplateData) {
	_ = eachParagraph(root, func(p *xmlNode) error {
		text := paragraphText(p)
		if updated := expandInlineText(text, data); updated != text {
			setParagraphText(p, updated)
		}
		return nil
	})
}

func expandInlineText(text string, data model.TemplateData) string {
	for {
		var opening *token
		expanded := false
		tokens := parseTokens(text)
		for i := range tokens {
			tok := tokens[i]
			if tok.kind == tokenOpen {
				opening = &tokens[i]
				continue
			}
			if tok.kind != tokenClose || opening == nil || opening.name != tok.name {
				continue
			}
			body := text[opening.end:tok.start]
			var b strings.Builder
			for _, item := range data.Sections[tok.name] {
				b.WriteString(substitute(body, itemLookup(item, data.Scalars)))
			}
			text = text[:opening.start] + b.String() + text[tok.end:]
			expanded = true
			break
		}
		if !expanded {
			return text
		}
	}
}

// expandBlockSections repeats the sibling nodes between a paragraph holding
// {{#name}} and the sibling paragraph holding {{/name}}.
func expandBlockSections(n *xmlNode, data model.TemplateData) error {
	if n == nil || n.IsText {
		return nil
	}
	for i := 0; i < len(n.Children); i++ {
		child := n.Children[i]
		if !isElement(child, "p") {
			if err := expandBlockSections(child, data); err != nil {
				return err
			}
			continue
		}
		name, ok := openingSection(child)
		if !ok {
			continue
		}
		next, err := expandSectionAt(n, i, name, data)
		if err != nil {
			return err
		}
		i = next - 1
	}
	if isElement(n, "tc") && !hasBlockChild(n) {
		n.Children = append(n.Children, &xmlNode{Name: xml.Name{Space: wmlNamespace, Local: "p"}})
	}
	return nil
}

func hasBlockChild(n *xmlNode) bool {
	for _, c := range n.Children {
		if isElement(c, "p") || isElement(c, "tbl") {
			return true
		}
	}
	return false
}

func openingSection(p *xmlNode) (string, bool) {
	for _, tok := range parseTokens(paragraphText(p)) {
		if tok.kind == tokenOpen {
			return tok.name, true
		}
	}
	return "", false
}

func hasToken(p *xmlNode, kind tokenKind, name string) bool {
	for _, tok := range parseTokens(paragraphText(p)) {
		if tok.kind == kind && tok.name == name {
			return true
		}
	}
	return false
}

// expandSectionAt renders the section opening at container.Children[start]
// and returns the index just past the rendered output.
func expandSectionAt(container *xmlNode, start int, name string, data model.TemplateData) (int, error) {
	end := -1
	for j := start + 1; j < len(container.Children); j++ {
		if isElement(container.Children[j], "p") && hasToken(container.Children[j], tokenClose, name) {
			end = j
			break
		}
	}
	if end == -1 {
		return 0, fmt.Errorf("%w: {{#%s}} must be closed by {{/%s}} in the same container", ErrPlaceholder, name, name)
	}

	body := container.Children[start+1 : end]
	items := data.Sections[name]
	rendered := make([]*xmlNode, 0, len(items)*len(body))
	for _, item := range items {
		tmp := &xmlNode{Name: xml.Name{Local: "root"}, Children: cloneNodes(body)}
		substituteParagraphs(tmp, itemLookup(item, data.Scalars))
		rendered = append(rendered, tmp.Children...)
	}

	out := make([]*xmlNode, 0, len(container.Children)-len(body)+len(rendered))
	out = append(out, container.Children[:start]...)
	if keep := stripMarker(container.Children[start], tokenOpen, name); keep != nil {
		out = append(out, keep)
	}
	out = append(out, rendered...)
	next := len(out)
	if keep := stripMarker(container.Children[end], tokenClose, name); keep != nil {
		out = append(out, keep)
		next = len(out)
	}
	out = append(out, container.Children[end+1:]...)
	container.Children = out
	return next, nil
}

// stripMarker removes one section marker from p and drops p when nothing
// but whitespace is left.
func stripMarker(p *xmlNode, kind tokenKind, name string) *xmlNode {
	text := paragraphText(p)
	for _, tok := range parseTokens(text) {
		if tok.kind == kind && tok.name == name {
			text = text[:tok.start] + text[tok.end:]
			break
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	setParagraphText(p, text)
	return p
}
