package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"sort"
	"strings"
)

const (
	wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	relNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	xmlNamespace = "http://www.w3.org/XML/1998/namespace"
)

type xmlNode struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*xmlNode
	Text     string
	IsText   bool
}

// xmlPart is one parsed XML file from the package. The raw root tags are
// kept so the root's namespace declarations survive a round trip verbatim.
type xmlPart struct {
	header    string
	rootStart string
	rootEnd   string
	root      *xmlNode
}

var xmlHeaderPattern = regexp.MustCompile(`(?s)^\s*(<\?xml[^>]+\?>)`)

func parsePart(text string) (*xmlPart, error) {
	rootStart, rootEnd, err := rootTags(text)
	if err != nil {
		return nil, err
	}
	header := ""
	if match := xmlHeaderPattern.FindStringSubmatch(text); len(match) > 0 {
		header = match[1]
		text = text[len(match[0]):]
	}

	decoder := xml.NewDecoder(strings.NewReader(text))
	var stack []*xmlNode
	var root *xmlNode
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			n := &xmlNode{Name: t.Name, Attr: t.Attr}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 || len(t) == 0 {
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, &xmlNode{IsText: true, Text: string(t)})
		}
	}
	if root == nil {
		return nil, errors.New("xml part has no root element")
	}
	return &xmlPart{header: header, rootStart: rootStart, rootEnd: rootEnd, root: root}, nil
}

func (p *xmlPart) encode() (string, error) {
	var buf bytes.Buffer
	if p.header != "" {
		buf.WriteString(p.header)
		if !strings.HasSuffix(p.header, "\n") {
			buf.WriteByte('\n')
		}
	}

	out := cloneNode(p.root)
	flattenXMLNSAttrs(out)
	prefixes := declaredPrefixes(p.root)
	applyPrefixes(out, prefixes)

	buf.WriteString(withNamespaces(p.rootStart, requiredNamespaces(usedPrefixes(out), p.root)))
	enc := xml.NewEncoder(&buf)
	for _, child := range out.Children {
		if err := encodeNode(enc, child); err != nil {
			return "", err
		}
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	buf.WriteString(p.rootEnd)
	return buf.String(), nil
}

func encodeNode(enc *xml.Encoder, n *xmlNode) error {
	if n.IsText {
		return enc.EncodeToken(xml.CharData(n.Text))
	}
	start := xml.StartElement{Name: n.Name, Attr: n.Attr}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := encodeNode(enc, child); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func walkXML(n *xmlNode, visit func(*xmlNode) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for _, child := range n.Children {
		if !walkXML(child, visit) {
			return false
		}
	}
	return true
}

func cloneNode(n *xmlNode) *xmlNode {
	if n == nil {
		return nil
	}
	out := &xmlNode{
		Name:   n.Name,
		Attr:   append([]xml.Attr(nil), n.Attr...),
		Text:   n.Text,
		IsText: n.IsText,
	}
	if len(n.Children) > 0 {
		out.Children = cloneNodes(n.Children)
	}
	return out
}

func cloneNodes(nodes []*xmlNode) []*xmlNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*xmlNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, cloneNode(n))
	}
	return out
}

func isElement(n *xmlNode, local string) bool {
	if n == nil || n.IsText || n.Name.Local != local {
		return false
	}
	return n.Name.Space == "" || n.Name.Space == wmlNamespace
}

// textElements returns the <w:t> nodes of paragraph p in document order,
// leaving out paragraphs nested in text boxes.
func textElements(p *xmlNode) []*xmlNode {
	var out []*xmlNode
	var collect func(*xmlNode)
	collect = func(n *xmlNode) {
		for _, c := range n.Children {
			switch {
			case c.IsText || isElement(c, "p"):
			case isElement(c, "t"):
				out = append(out, c)
			default:
				collect(c)
			}
		}
	}
	collect(p)
	return out
}

// eachParagraph calls fn for every paragraph below n, nested ones included.
func eachParagraph(n *xmlNode, fn func(p *xmlNode) error) error {
	var failure error
	walkXML(n, func(c *xmlNode) bool {
		if isElement(c, "p") {
			failure = fn(c)
		}
		return failure == nil
	})
	return failure
}

func ownText(n *xmlNode) string {
	var b strings.Builder
	for _, child := range n.Children {
		if child.IsText {
			b.WriteString(child.Text)
		}
	}
	return b.String()
}

func paragraphText(p *xmlNode) string {
	var b strings.Builder
	for _, t := range textElements(p) {
		b.WriteString(ownText(t))
	}
	return b.String()
}

// setParagraphText puts text into the paragraph's first run and empties the
// rest, which also merges placeholders Word split across runs.
func setParagraphText(p *xmlNode, text string) {
	nodes := textElements(p)
	if len(nodes) == 0 {
		return
	}
	for i, t := range nodes {
		t.Children = t.Children[:0]
		if i == 0 && text != "" {
			t.Children = append(t.Children, &xmlNode{IsText: true, Text: text})
		}
	}
	if text != strings.TrimSpace(text) {
		preserveSpace(nodes[0])
	}
}

func preserveSpace(t *xmlNode) {
	for i, attr := range t.Attr {
		if attr.Name.Local == "space" && (attr.Name.Space == xmlNamespace || attr.Name.Space == "xml") {
			t.Attr[i].Value = "preserve"
			return
		}
	}
	t.Attr = append(t.Attr, xml.Attr{Name: xml.Name{Space: xmlNamespace, Local: "space"}, Value: "preserve"})
}

func isXMLNSAttr(attr xml.Attr) bool {
	return attr.Name.Space == "xmlns" ||
		(attr.Name.Space == "" && (attr.Name.Local == "xmlns" || strings.HasPrefix(attr.Name.Local, "xmlns:")))
}

// declaredPrefixes maps namespace URI to the prefix the root declares for it.
func declaredPrefixes(root *xmlNode) map[string]string {
	out := make(map[string]string)
	for prefix, uri := range rootDeclarations(root) {
		out[uri] = prefix
	}
	return out
}

// rootDeclarations maps prefix to namespace URI for the root's xmlns attributes.
func rootDeclarations(root *xmlNode) map[string]string {
	out := make(map[string]string)
	if root == nil {
		return out
	}
	for _, attr := range root.Attr {
		switch {
		case attr.Name.Space == "xmlns":
			out[attr.Name.Local] = attr.Value
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			out[""] = attr.Value
		case attr.Name.Space == "" && strings.HasPrefix(attr.Name.Local, "xmlns:"):
			out[strings.TrimPrefix(attr.Name.Local, "xmlns:")] = attr.Value
		}
	}
	return out
}

func flattenXMLNSAttrs(n *xmlNode) {
	walkXML(n, func(c *xmlNode) bool {
		if c.IsText {
			return true
		}
		for i, attr := range c.Attr {
			if attr.Name.Space != "xmlns" {
				continue
			}
			if attr.Name.Local == "" {
				attr.Name = xml.Name{Local: "xmlns"}
			} else {
				attr.Name = xml.Name{Local: "xmlns:" + attr.Name.Local}
			}
			c.Attr[i] = attr
		}
		return true
	})
}

// applyPrefixes rewrites namespaced names into "prefix:local" form so the
// encoder does not redeclare namespaces on every element.
func applyPrefixes(n *xmlNode, prefixes map[string]string) {
	if len(prefixes) == 0 {
		return
	}
	walkXML(n, func(c *xmlNode) bool {
		if c.IsText {
			return true
		}
		if prefix, ok := prefixes[c.Name.Space]; ok && prefix != "" {
			c.Name = xml.Name{Local: prefix + ":" + c.Name.Local}
		}
		for i, attr := range c.Attr {
			if isXMLNSAttr(attr) {
				continue
			}
			if prefix, ok := prefixes[attr.Name.Space]; ok && prefix != "" {
				c.Attr[i].Name = xml.Name{Local: prefix + ":" + attr.Name.Local}
			}
		}
		return true
	})
}

func usedPrefixes(n *xmlNode) map[string]struct{} {
	out := make(map[string]struct{})
	add := func(name string) {
		if name == "xmlns" || strings.HasPrefix(name, "xmlns:") {
			return
		}
		if idx := strings.IndexByte(name, ':'); idx > 0 {
			out[name[:idx]] = struct{}{}
		}
	}
	walkXML(n, func(c *xmlNode) bool {
		if c.IsText {
			return true
		}
		add(c.Name.Local)
		for _, attr := range c.Attr {
			add(attr.Name.Local)
		}
		return true
	})
	return out
}

var wellKnownNamespaces = map[string]string{
	"w":   wmlNamespace,
	"r":   relNamespace,
	"a":   "http://schemas.openxmlformats.org/drawingml/2006/main",
	"wp":  "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing",
	"pic": "http://schemas.openxmlformats.org/drawingml/2006/picture",
	"mc":  "http://schemas.openxmlformats.org/markup-compatibility/2006",
	"w14": "http://schemas.microsoft.com/office/word/2010/wordml",
	"w15": "http://schemas.microsoft.com/office/word/2012/wordml",
}

func requiredNamespaces(prefixes map[string]struct{}, root *xmlNode) map[string]string {
	declared := rootDeclarations(root)
	required := make(map[string]string, len(prefixes))
	for prefix := range prefixes {
		if uri, ok := declared[prefix]; ok {
			required[prefix] = uri
		} else if uri, ok := wellKnownNamespaces[prefix]; ok {
			required[prefix] = uri
		}
	}
	return required
}

var xmlnsAttrPattern = regexp.MustCompile(`\s+xmlns(?::([A-Za-z0-9._-]+))?="([^"]+)"`)

// withNamespaces appends xmlns declarations the raw root tag is missing.
func withNamespaces(rootStart string, required map[string]string) string {
	existing := make(map[string]string)
	for _, m := range xmlnsAttrPattern.FindAllStringSubmatch(rootStart, -1) {
		existing[m[1]] = m[2]
	}
	var missing []string
	for prefix, uri := range required {
		if uri == "" || existing[prefix] == uri {
			continue
		}
		missing = append(missing, prefix)
	}
	if len(missing) == 0 {
		return rootStart
	}
	sort.Strings(missing)
	var b strings.Builder
	for _, prefix := range missing {
		if prefix == "" {
			b.WriteString(` xmlns="` + required[prefix] + `"`)
		} else {
			b.WriteString(` xmlns:` + prefix + `="` + required[prefix] + `"`)
		}
	}
	cut := strings.LastIndex(rootStart, ">")
	if strings.HasSuffix(rootStart, "/>") {
		cut = len(rootStart) - 2
	}
	if cut < 0 {
		return rootStart
	}
	return rootStart[:cut] + b.String() + rootStart[cut:]
}

// rootTags returns the literal start and end tags of the document element.
func rootTags(text string) (string, string, error) {
	i := 0
	for {
		idx := strings.IndexByte(text[i:], '<')
		if idx == -1 {
			return "", "", errors.New("root start tag not found")
		}
		i += idx
		var closer string
		switch {
		case strings.HasPrefix(text[i:], "<?"):
			closer = "?>"
		case strings.HasPrefix(text[i:], "<!--"):
			closer = "-->"
		case strings.HasPrefix(text[i:], "<!"):
			closer = ">"
		}
		if closer == "" {
			break
		}
		end := strings.Index(text[i:], closer)
		if end == -1 {
			return "", "", errors.New("unterminated xml prolog")
		}
		i += end + len(closer)
	}

	start := i
	var quote byte
	for i = start + 1; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if c == '>' {
			break
		}
	}
	if i >= len(text) {
		return "", "", errors.New("root start tag not terminated")
	}
	rootStart := text[start : i+1]
	name := strings.TrimSpace(rootStart[1 : len(rootStart)-1])
	if cut := strings.IndexAny(name, " \t\r\n/"); cut >= 0 {
		name = name[:cut]
	}
	if name == "" {
		return "", "", errors.New("root tag name missing")
	}
	endTag := "</" + name + ">"
	endPos := strings.LastIndex(text, endTag)
	if endPos == -1 {
		return "", "", errors.New("root end tag not found")
	}
	return rootStart, endTag, nil
}
