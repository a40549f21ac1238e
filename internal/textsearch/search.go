// Package textsearch finds the elements of an HTML tree whose text children
// match a pattern.
//
// A search walks every text node under a scope node in document order and
// collects the parent of each node whose trimmed text satisfies the pattern,
// skipping text whose parent matches an exclusion selector. The walk is
// read-only and keeps no state between calls.
package textsearch

import (
	"strings"
	"unicode"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

const (
	// DefaultExclude keeps script bodies out of results.
	DefaultExclude = "script"

	// excludeNothing is a valid selector that matches no element.
	excludeNothing = ":not(*)"
)

// Query describes one search.
type Query struct {
	// Pattern is tested against the trimmed value of each text node.
	Pattern Pattern

	// CaseSensitive controls how String patterns are compiled.
	CaseSensitive bool

	// Exclude is a CSS selector; text whose parent matches it is skipped.
	// An empty selector excludes nothing.
	Exclude string

	// Unique collapses repeated containers. When false, an element gets one
	// entry per matching text child.
	Unique bool
}

// DefaultQuery returns a query that matches any non-empty text, ignores case
// and excludes script elements.
func DefaultQuery() Query {
	return Query{Exclude: DefaultExclude}
}

type searcher struct {
	matcher Matcher
	exclude cascadia.Selector
}

func (q Query) compile() (*searcher, error) {
	matcher, err := q.Pattern.resolve(q.CaseSensitive)
	if err != nil {
		return nil, err
	}

	sel := q.Exclude
	if strings.TrimSpace(sel) == "" {
		sel = excludeNothing
	}
	exclude, err := cascadia.Compile(sel)
	if err != nil {
		return nil, &SelectorSyntaxError{Selector: q.Exclude, Err: err}
	}

	return &searcher{matcher: matcher, exclude: exclude}, nil
}

// Validate compiles the pattern and exclusion selector without searching.
func (q Query) Validate() error {
	_, err := q.compile()
	return err
}

// accept is the per-node filter applied to every text node under the scope.
func (s *searcher) accept(n *html.Node) bool {
	return n.Parent != nil &&
		!s.exclude(n.Parent) &&
		s.matcher.Test(trimText(n.Data))
}

// trimText strips white space and U+FEFF from both ends of s.
func trimText(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// Search returns the parent of every text node under scope that passes q, in
// document order. The result is never nil. Pattern and selector errors are
// returned before the tree is touched.
func Search(q Query, scope *html.Node) ([]*html.Node, error) {
	s, err := q.compile()
	if err != nil {
		return nil, err
	}
	if scope == nil {
		return nil, &InvalidScopeError{Reason: "nil node"}
	}
	if scope.Type == html.ErrorNode {
		return nil, &InvalidScopeError{Reason: "error node"}
	}

	texts := FindAll(scope, html.TextNode, s.accept)
	found := make([]*html.Node, 0, len(texts))
	for _, t := range texts {
		found = append(found, t.Parent)
	}

	if q.Unique {
		found = Unique(found)
	}
	return found, nil
}

// Find is Search with positional arguments. exclude is used as given, so ""
// excludes nothing; pass DefaultExclude for the usual behavior.
func Find(scope *html.Node, pattern Pattern, caseSensitive bool, exclude string) ([]*html.Node, error) {
	return Search(Query{Pattern: pattern, CaseSensitive: caseSensitive, Exclude: exclude}, scope)
}
