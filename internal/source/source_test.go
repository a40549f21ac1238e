package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"domtext/internal/dom"
	"domtext/internal/textsearch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func search(t *testing.T, doc *dom.Document, pattern string) []string {
	t.Helper()
	q := textsearch.DefaultQuery()
	q.Pattern = textsearch.String(pattern)
	got, err := doc.Search(q, nil)
	require.NoError(t, err)
	var ids []string
	for _, n := range got {
		ids = append(ids, n.Data+"#"+dom.Attr(n, "id"))
	}
	return ids
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testClient(t *testing.T) *http.Client {
	tr := &http.Transport{DisableKeepAlives: true}
	t.Cleanup(tr.CloseIdleConnections)
	return &http.Client{Transport: tr}
}

func TestDetect(t *testing.T) {
	assert.IsType(t, readerSource{}, Detect("-", Options{}))
	assert.IsType(t, httpSource{}, Detect("https://example.test/", Options{}))
	assert.IsType(t, fileSource{}, Detect("page.html", Options{}))
	assert.IsType(t, fileSource{}, Detect("httpfile.html", Options{}))
	assert.Equal(t, "<stdin>", Detect("-", Options{}).Name())
}

func TestFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "page.html", `<div id="a">needle</div>`)

	doc, err := File(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"div#a"}, search(t, doc, "needle"))

	_, err = File(filepath.Join(t.TempDir(), "missing.html")).Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReader(t *testing.T) {
	src := Detect("-", Options{Stdin: strings.NewReader(`<p id="in">from stdin</p>`)})
	doc, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p#in"}, search(t, doc, "stdin"))
}

func TestHTTP(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><body><h1 id="h">Title needle</h1></body></html>`))
		case "/notes.txt":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("a <needle> in plain text"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	opts := FetchOptions{Timeout: 5 * time.Second, MaxBytes: 1 << 20, UserAgent: "domtext-test", Client: testClient(t)}

	doc, err := HTTP(ts.URL+"/page", opts).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "domtext-test", gotUA)
	assert.Equal(t, []string{"h1#h"}, search(t, doc, "needle"))

	doc, err = HTTP(ts.URL+"/notes.txt", opts).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pre#"}, search(t, doc, "<needle>"))

	_, err = HTTP(ts.URL+"/missing", opts).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTP_MaxBytesTruncates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<p id="early">early</p>` + strings.Repeat(" ", 4096) + `<p id="late">late</p>`))
	}))
	defer ts.Close()

	doc, err := HTTP(ts.URL, FetchOptions{MaxBytes: 64, Client: testClient(t)}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p#early"}, search(t, doc, "early"))
	assert.Empty(t, search(t, doc, "late"))
}

func TestHTTP_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := HTTP(ts.URL, FetchOptions{Client: testClient(t)}).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadAll(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	sources := []Source{
		File(writeFile(t, dir, "one.html", `<p id="one">x</p>`)),
		File(writeFile(t, dir, "two.html", `<p id="two">x</p>`)),
		File(writeFile(t, dir, "three.html", `<p id="three">x</p>`)),
	}

	docs, err := LoadAll(context.Background(), sources, 2)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"p#one"}, search(t, docs[0], "x"))
	assert.Equal(t, []string{"p#two"}, search(t, docs[1], "x"))
	assert.Equal(t, []string{"p#three"}, search(t, docs[2], "x"))
}

func TestLoadAll_ErrorNamesSource(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	missing := filepath.Join(t.TempDir(), "missing.html")
	_, err := LoadAll(context.Background(), []Source{File(missing)}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
}
