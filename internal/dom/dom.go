// Package dom loads HTML into node trees and resolves search scopes within
// them. It is the environment binding for textsearch: the default scope of a
// search is the body of the Document it runs against.
package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"domtext/internal/textsearch"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrScopeNotFound is returned when a scope selector matches no element.
var ErrScopeNotFound = errors.New("scope selector matched no element")

// Document is a parsed HTML tree.
type Document struct {
	root *html.Node
	doc  *goquery.Document
}

// NewDocument wraps an existing tree rooted at root.
func NewDocument(root *html.Node) *Document {
	return &Document{root: root, doc: goquery.NewDocumentFromNode(root)}
}

// Parse reads a complete HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return NewDocument(root), nil
}

// ParseString parses a complete HTML document held in a string.
func ParseString(source string) (*Document, error) {
	return Parse(strings.NewReader(source))
}

// ParseFragment parses source in a <body> context and attaches the resulting
// nodes under a fresh html/body pair, so every top-level text node has an
// element parent.
func ParseFragment(source string) (*Document, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(source), body)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	htmlEl := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	htmlEl.AppendChild(body)
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(htmlEl)
	return NewDocument(root), nil
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the <body> element, or the root when the tree has none.
func (d *Document) Body() *html.Node {
	if body := d.doc.Find("body").First(); body.Length() > 0 {
		return body.Nodes[0]
	}
	return d.root
}

// Scope returns the first element matching selector. An empty selector
// resolves to Body.
func (d *Document) Scope(selector string) (*html.Node, error) {
	if strings.TrimSpace(selector) == "" {
		return d.Body(), nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, &textsearch.SelectorSyntaxError{Selector: selector, Err: err}
	}
	found := d.doc.FindMatcher(sel).First()
	if found.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrScopeNotFound, selector)
	}
	return found.Nodes[0], nil
}

// Search runs q under scope, defaulting to Body when scope is nil.
func (d *Document) Search(q textsearch.Query, scope *html.Node) ([]*html.Node, error) {
	if scope == nil {
		scope = d.Body()
	}
	return textsearch.Search(q, scope)
}

// Describe prints tag name, id, classes and the ancestor chain of n, e.g.
// "span#x.note (html>body>div)".
func Describe(n *html.Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Type != html.ElementNode {
		return fmt.Sprintf("<%s>", nodeTypeName(n.Type))
	}

	str := strings.ToLower(n.Data)
	if id := Attr(n, "id"); id != "" {
		str += "#" + id
	}
	for _, class := range strings.Fields(Attr(n, "class")) {
		str += "." + class
	}

	var chain []string
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			chain = append(chain, strings.ToLower(p.Data))
		}
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return str + " (" + strings.Join(chain, ">") + ")"
}

// Path returns a CSS path from the root to n using tag names and
// :nth-of-type where siblings share a tag.
func Path(n *html.Node) string {
	var parts []string
	for ; n != nil && n.Type == html.ElementNode; n = n.Parent {
		part := strings.ToLower(n.Data)
		if idx, total := typeIndex(n); total > 1 {
			part += fmt.Sprintf(":nth-of-type(%d)", idx)
		}
		parts = append([]string{part}, parts...)
	}
	return strings.Join(parts, " > ")
}

func typeIndex(n *html.Node) (idx, total int) {
	if n.Parent == nil {
		return 1, 1
	}
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != n.Data {
			continue
		}
		total++
		if c == n {
			idx = total
		}
	}
	return idx, total
}

// Attr returns the value of attribute key on n, or "".
func Attr(n *html.Node, key string) string {
	val, _ := goquery.NewDocumentFromNode(n).Attr(key)
	return val
}

// Text returns the trimmed, whitespace-collapsed text content of n.
func Text(n *html.Node) string {
	return strings.Join(strings.Fields(goquery.NewDocumentFromNode(n).Text()), " ")
}

// OuterHTML renders n and its subtree.
func OuterHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func nodeTypeName(t html.NodeType) string {
	switch t {
	case html.TextNode:
		return "text"
	case html.DocumentNode:
		return "document"
	case html.CommentNode:
		return "comment"
	case html.DoctypeNode:
		return "doctype"
	case html.RawNode:
		return "raw"
	default:
		return "error"
	}
}
