package config

// ScanConfig controls how directory arguments expand into documents.
type ScanConfig struct {
	// Extensions lists the file suffixes treated as HTML, including the dot.
	Extensions []string `yaml:"extensions"`
	// IgnorePatterns skips matching paths/dirs (relative to the scanned root).
	// Supports simple dir names (e.g., "node_modules") and glob patterns (e.g., "vendor/*").
	IgnorePatterns []string `yaml:"ignore"`
	// IncludeHidden descends into dot-directories.
	IncludeHidden bool `yaml:"include_hidden"`
}

// DefaultScanConfig returns defaults suitable for site builds and repos.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Extensions: []string{".html", ".htm", ".xhtml"},
		IgnorePatterns: []string{
			"node_modules",
			"vendor",
			".git",
			".domtext",
		},
	}
}
