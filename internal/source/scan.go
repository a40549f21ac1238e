package source

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"domtext/internal/config"
	"domtext/internal/logging"
)

// Expand replaces each directory in args with the HTML files beneath it, in
// lexical walk order. Other arguments (files, URLs, "-") pass through
// unchanged and keep their position.
func Expand(args []string, cfg config.ScanConfig) ([]string, error) {
	var out []string
	for _, arg := range args {
		if arg == "-" || strings.Contains(arg, "://") {
			out = append(out, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// Missing files surface later as a load error naming the path.
			out = append(out, arg)
			continue
		}

		files, err := scanDir(arg, cfg)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			logging.FetchWarn("No HTML files under %s", arg)
		}
		logging.FetchDebug("Expanded %s to %d files", arg, len(files))
		out = append(out, files...)
	}
	return out, nil
}

func scanDir(root string, cfg config.ScanConfig) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil || rel == "." {
			return nil
		}
		name := d.Name()

		if d.IsDir() {
			if strings.HasPrefix(name, ".") && !cfg.IncludeHidden {
				return filepath.SkipDir
			}
			if isIgnoredRel(rel, name, cfg.IgnorePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if isIgnoredRel(rel, name, cfg.IgnorePatterns) || !hasExtension(name, cfg.Extensions) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func normalizePattern(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimSuffix(p, "/")
	p = strings.TrimSuffix(p, "\\")
	return filepath.ToSlash(p)
}

// isIgnoredRel reports whether a relative path should be ignored.
func isIgnoredRel(rel, name string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, raw := range patterns {
		p := normalizePattern(raw)
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[]") {
			if ok, _ := path.Match(p, rel); ok {
				return true
			}
			// Directory globs like "vendor/*"
			if prefix, ok := strings.CutSuffix(p, "/*"); ok && strings.HasPrefix(rel, prefix+"/") {
				return true
			}
			continue
		}
		if name == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
	}
	return false
}
