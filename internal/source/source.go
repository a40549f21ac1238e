// Package source loads HTML documents from files, stdin, HTTP and a headless
// browser.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"domtext/internal/browser"
	"domtext/internal/dom"
	"domtext/internal/logging"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// Source is somewhere a document can be loaded from.
type Source interface {
	// Name identifies the source in output and logs.
	Name() string
	Load(ctx context.Context) (*dom.Document, error)
}

// FetchOptions configures HTTP loading.
type FetchOptions struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
	Client    *http.Client // nil = http.DefaultClient
}

// Options configures Detect.
type Options struct {
	Fetch FetchOptions

	// Renderer, when set, loads http(s) arguments through the browser.
	Renderer *browser.Renderer

	// Stdin is read for the "-" argument. nil = os.Stdin.
	Stdin io.Reader
}

// Detect maps a command-line argument to a Source: "-" is stdin, an
// http(s) URL is fetched (or rendered when opts.Renderer is set), anything
// else is a file path.
func Detect(arg string, opts Options) Source {
	switch {
	case arg == "-":
		in := opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		return Reader("<stdin>", in)
	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		if opts.Renderer != nil {
			return Browser(arg, opts.Renderer)
		}
		return HTTP(arg, opts.Fetch)
	default:
		return File(arg)
	}
}

// LoadAll loads every source concurrently, at most limit at a time
// (limit <= 0 means no limit). Documents are returned in source order; the
// first error cancels the rest.
func LoadAll(ctx context.Context, sources []Source, limit int) ([]*dom.Document, error) {
	docs := make([]*dom.Document, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, src := range sources {
		i, src := i, src // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			doc, err := src.Load(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

type fileSource struct {
	path string
}

// File reads a document from a local file.
func File(path string) Source {
	return fileSource{path: path}
}

func (s fileSource) Name() string { return s.path }

func (s fileSource) Load(ctx context.Context) (*dom.Document, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	logging.FetchDebug("Reading file %s", s.path)
	return dom.Parse(f)
}

type readerSource struct {
	name string
	r    io.Reader
}

// Reader parses a document from r. It can be loaded once.
func Reader(name string, r io.Reader) Source {
	return readerSource{name: name, r: r}
}

func (s readerSource) Name() string { return s.name }

func (s readerSource) Load(ctx context.Context) (*dom.Document, error) {
	return dom.Parse(s.r)
}

type httpSource struct {
	url  string
	opts FetchOptions
}

// HTTP fetches a document with a GET request.
func HTTP(url string, opts FetchOptions) Source {
	return httpSource{url: url, opts: opts}
}

func (s httpSource) Name() string { return s.url }

func (s httpSource) Load(ctx context.Context) (*dom.Document, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if s.opts.UserAgent != "" {
		req.Header.Set("User-Agent", s.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	client := s.opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	var body io.Reader = resp.Body
	if s.opts.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, s.opts.MaxBytes)
	}

	// Plain text has no markup; wrap it so its text still has a container.
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/plain") {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		logging.Fetch("Fetched %s as text (%d bytes)", s.url, len(raw))
		return dom.ParseFragment("<pre>" + html.EscapeString(string(raw)) + "</pre>")
	}

	doc, err := dom.Parse(body)
	if err != nil {
		return nil, err
	}
	logging.Fetch("Fetched %s (%s)", s.url, contentType)
	return doc, nil
}

type browserSource struct {
	url      string
	renderer *browser.Renderer
}

// Browser renders url in headless Chrome and parses the resulting DOM.
func Browser(url string, r *browser.Renderer) Source {
	return browserSource{url: url, renderer: r}
}

func (s browserSource) Name() string { return s.url }

func (s browserSource) Load(ctx context.Context) (*dom.Document, error) {
	source, err := s.renderer.Render(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return dom.ParseString(source)
}
