package source

import (
	"os"
	"path/filepath"
	"testing"

	"domtext/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"index.html",
		"notes.txt",
		"blog/post.HTM",
		"blog/draft/wip.xhtml",
		"node_modules/pkg/readme.html",
		".cache/page.html",
		"gen/out.html",
	} {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("<p>x</p>"), 0644))
	}

	cfg := config.DefaultScanConfig()
	cfg.IgnorePatterns = append(cfg.IgnorePatterns, "gen/*")

	got, err := Expand([]string{"-", root, "https://example.test/", "missing.html"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-",
		filepath.Join(root, "blog", "draft", "wip.xhtml"),
		filepath.Join(root, "blog", "post.HTM"),
		filepath.Join(root, "index.html"),
		"https://example.test/",
		"missing.html",
	}, got)

	cfg.IncludeHidden = true
	got, err = Expand([]string{root}, cfg)
	require.NoError(t, err)
	assert.Contains(t, got, filepath.Join(root, ".cache", "page.html"))
}

func TestIsIgnoredRel(t *testing.T) {
	patterns := []string{"node_modules", "vendor/*", "*.min.html", "dist/"}

	tests := []struct {
		rel  string
		want bool
	}{
		{"node_modules", true},
		{"a/node_modules", true},
		{"vendor/x/y.html", true},
		{"page.min.html", true},
		{"dist/index.html", true},
		{"docs/index.html", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, isIgnoredRel(tt.rel, filepath.Base(tt.rel), patterns))
		})
	}
}

func TestExpand_DirectoryWithoutHTML(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))

	got, err := Expand([]string{root}, config.DefaultScanConfig())
	require.NoError(t, err)
	assert.Empty(t, got)
}
