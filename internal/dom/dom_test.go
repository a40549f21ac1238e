package dom

import (
	"strings"
	"testing"

	"domtext/internal/textsearch"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const page = `<!DOCTYPE html>
<html><head><title>foo title</title></head>
<body>
  <div id="a" class="card wide">foo<span>bar</span></div>
  <ul id="list"><li>foo</li><li>baz</li></ul>
  <script>var foo = 1;</script>
</body></html>`

func describeAll(nodes []*html.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Describe(n))
	}
	return out
}

func TestDocument_SearchDefaultsToBody(t *testing.T) {
	doc, err := ParseString(page)
	require.NoError(t, err)

	q := textsearch.DefaultQuery()
	q.Pattern = textsearch.String("foo")
	got, err := doc.Search(q, nil)
	require.NoError(t, err)

	// The <title> lives in <head>, outside the default scope.
	want := []string{
		"div#a.card.wide (html>body)",
		"li (html>body>ul)",
	}
	if diff := cmp.Diff(want, describeAll(got)); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_SearchWholeDocument(t *testing.T) {
	doc, err := ParseString(page)
	require.NoError(t, err)

	q := textsearch.DefaultQuery()
	q.Pattern = textsearch.String("foo")
	got, err := doc.Search(q, doc.Root())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "title", got[0].Data)
}

func TestDocument_Scope(t *testing.T) {
	doc, err := ParseString(page)
	require.NoError(t, err)

	scope, err := doc.Scope("#list")
	require.NoError(t, err)
	assert.Equal(t, "ul", scope.Data)

	body, err := doc.Scope("")
	require.NoError(t, err)
	assert.Same(t, doc.Body(), body)

	_, err = doc.Scope("#missing")
	assert.ErrorIs(t, err, ErrScopeNotFound)

	_, err = doc.Scope("ul[")
	assert.ErrorIs(t, err, textsearch.ErrSelectorSyntax)
}

func TestParseFragment_TopLevelTextHasElementParent(t *testing.T) {
	doc, err := ParseFragment(`loose foo <b>foo</b>`)
	require.NoError(t, err)

	q := textsearch.DefaultQuery()
	q.Pattern = textsearch.String("foo")
	got, err := doc.Search(q, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "body", got[0].Data)
	assert.Equal(t, "b", got[1].Data)
}

func TestDescribeAndPath(t *testing.T) {
	doc, err := ParseString(`<body><ul><li>a</li><li id="x">b</li></ul></body>`)
	require.NoError(t, err)

	li, err := doc.Scope("#x")
	require.NoError(t, err)
	assert.Equal(t, "li#x (html>body>ul)", Describe(li))
	assert.Equal(t, "html > body > ul > li:nth-of-type(2)", Path(li))
	assert.Equal(t, "<text>", Describe(li.FirstChild))
	assert.Equal(t, "<nil>", Describe(nil))
}

func TestTextAndOuterHTML(t *testing.T) {
	doc, err := ParseString(`<body><p id="p">  hello
	  <em>world</em>  </p></body>`)
	require.NoError(t, err)

	p, err := doc.Scope("#p")
	require.NoError(t, err)
	assert.Equal(t, "hello world", Text(p))
	assert.Equal(t, "p", Attr(p, "id"))

	out, err := OuterHTML(p.LastChild.PrevSibling)
	require.NoError(t, err)
	assert.Equal(t, "<em>world</em>", out)
}

func TestBody_FallsBackToRoot(t *testing.T) {
	root := &html.Node{Type: html.DocumentNode}
	doc := NewDocument(root)
	assert.Same(t, root, doc.Body())
}

func TestParse_Reader(t *testing.T) {
	doc, err := Parse(strings.NewReader("<p>x</p>"))
	require.NoError(t, err)
	assert.Equal(t, "body", doc.Body().Data)
}
