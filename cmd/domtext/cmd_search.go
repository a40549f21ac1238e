package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"domtext/internal/browser"
	"domtext/internal/config"
	"domtext/internal/dom"
	"domtext/internal/logging"
	"domtext/internal/source"
	"domtext/internal/textsearch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var (
	searchPattern       string
	searchRegex         string
	searchCaseSensitive bool
	searchExclude       string
	searchScope         string
	searchUnique        bool
	searchBrowser       bool
	searchFormat        string
	searchJobs          int
)

// searchCmd finds elements whose own text matches a pattern.
var searchCmd = &cobra.Command{
	Use:   "search [flags] <source>...",
	Short: "Print the elements whose text matches a pattern",
	Long: `Search walks every text node under the scope element (default: <body>),
trims it, tests it against the pattern, and prints the parent element of
each match in document order. Text directly inside an excluded element
(default: script) is skipped.

Sources are file paths, directories (searched for HTML files), "-" for
stdin, or http(s) URLs. With --browser, URLs are rendered in headless Chrome
first.`,
	Example: `  domtext search -p 'price' page.html
  domtext search --regex '/^total:\s*\d+/i' --scope '#cart' https://shop.example/
  curl -s https://example.com | domtext search -p example -x '' -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	addSearchFlags(searchCmd)
}

// addSearchFlags binds the search flags to cmd.
func addSearchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&searchPattern, "pattern", "p", "", "Pattern source (ECMAScript regular expression syntax)")
	f.StringVar(&searchRegex, "regex", "", "Regular expression literal, e.g. /foo\\d+/i (ignores --case-sensitive)")
	f.BoolVarP(&searchCaseSensitive, "case-sensitive", "s", false, "Match case (default from config)")
	f.StringVarP(&searchExclude, "exclude", "x", textsearch.DefaultExclude, "CSS selector for elements whose text is skipped; \"\" disables (default from config)")
	f.StringVar(&searchScope, "scope", "", "CSS selector of the element to search under (default: body)")
	f.BoolVar(&searchUnique, "unique", false, "Report each element at most once")
	f.BoolVar(&searchBrowser, "browser", false, "Render http(s) sources in headless Chrome")
	f.StringVar(&searchFormat, "format", "text", "Output format: text, json or html")
	f.IntVar(&searchJobs, "jobs", 4, "Sources loaded concurrently")
	cmd.MarkFlagsMutuallyExclusive("pattern", "regex")
}

// errNoDocuments is returned when directory expansion leaves nothing to load.
var errNoDocuments = errors.New("no HTML documents to search")

// match is one search result as printed by the json format.
type match struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
	Tag    string `json:"tag"`
	ID     string `json:"id,omitempty"`
	Path   string `json:"path"`
	Text   string `json:"text"`

	node *html.Node
}

// buildQuery merges config defaults with the flags the user actually set.
func buildQuery(cmd *cobra.Command, c *config.Config) (textsearch.Query, string, error) {
	q := c.Query()
	scope := c.Search.Scope
	flags := cmd.Flags()

	if flags.Changed("case-sensitive") {
		q.CaseSensitive = searchCaseSensitive
	}
	if flags.Changed("exclude") {
		q.Exclude = searchExclude
	}
	if flags.Changed("unique") {
		q.Unique = searchUnique
	}
	if flags.Changed("scope") {
		scope = searchScope
	}

	switch {
	case flags.Changed("regex"):
		p, err := textsearch.Literal(searchRegex)
		if err != nil {
			return q, "", err
		}
		q.Pattern = p
	case flags.Changed("pattern"):
		q.Pattern = textsearch.String(searchPattern)
	}

	if err := q.Validate(); err != nil {
		return q, "", err
	}
	return q, scope, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	switch searchFormat {
	case "text", "json", "html":
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, html)", searchFormat)
	}

	c := currentConfig()
	q, scopeSel, err := buildQuery(cmd, c)
	if err != nil {
		return err
	}
	logger.Debug("Query built",
		zap.Stringer("pattern", q.Pattern),
		zap.Bool("case_sensitive", q.CaseSensitive),
		zap.String("exclude", q.Exclude),
		zap.String("scope", scopeSel))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	opts := source.Options{
		Fetch: source.FetchOptions{
			Timeout:   c.GetFetchTimeout(),
			MaxBytes:  c.Fetch.MaxBytes,
			UserAgent: c.Fetch.UserAgent,
		},
		Stdin: cmd.InOrStdin(),
	}
	if searchBrowser {
		r := browser.NewRenderer(c.Browser)
		defer func() {
			if err := r.Shutdown(context.Background()); err != nil {
				logger.Warn("Browser shutdown failed", zap.Error(err))
			}
		}()
		opts.Renderer = r
	}

	args, err = source.Expand(args, c.Scan)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return errNoDocuments
	}
	sources := make([]source.Source, len(args))
	for i, arg := range args {
		sources[i] = source.Detect(arg, opts)
	}

	timer := logging.StartTimer(logging.CategorySearch, "search")
	docs, err := source.LoadAll(ctx, sources, searchJobs)
	if err != nil {
		return err
	}

	var results []match
	for i, doc := range docs {
		name := sources[i].Name()
		scope, err := doc.Scope(scopeSel)
		if errors.Is(err, dom.ErrScopeNotFound) {
			logger.Warn("Scope not found", zap.String("source", name), zap.String("scope", scopeSel))
			continue
		}
		if err != nil {
			return err
		}

		nodes, err := doc.Search(q, scope)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		logging.Search("%s: %d matches for %s", name, len(nodes), q.Pattern)
		for j, n := range nodes {
			results = append(results, match{
				Source: name,
				Index:  j,
				Tag:    n.Data,
				ID:     dom.Attr(n, "id"),
				Path:   dom.Path(n),
				Text:   dom.Text(n),
				node:   n,
			})
		}
	}
	timer.Stop()
	logger.Info("Search complete", zap.Int("sources", len(docs)), zap.Int("matches", len(results)))

	return writeResults(cmd.OutOrStdout(), results, searchFormat)
}

func writeResults(w io.Writer, results []match, format string) error {
	switch format {
	case "json":
		if results == nil {
			results = []match{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "html":
		for _, m := range results {
			out, err := dom.OuterHTML(m.node)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w, out); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, m := range results {
			if _, err := fmt.Fprintf(w, "%s:%d: %s %s\n", m.Source, m.Index, dom.Describe(m.node), strconv.Quote(m.Text)); err != nil {
				return err
			}
		}
		return nil
	}
}
