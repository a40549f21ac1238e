package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"domtext/internal/textsearch"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file, relative to the
// working directory.
var DefaultPath = filepath.Join(".domtext", "config.yaml")

// Config holds all domtext configuration.
type Config struct {
	// Search defaults, overridable per invocation.
	Search SearchConfig `yaml:"search"`

	// HTTP document fetching
	Fetch FetchConfig `yaml:"fetch"`

	// Directory expansion
	Scan ScanConfig `yaml:"scan"`

	// Headless browser rendering
	Browser BrowserConfig `yaml:"browser"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SearchConfig holds default search options.
type SearchConfig struct {
	CaseSensitive bool   `yaml:"case_sensitive"`
	Exclude       string `yaml:"exclude"` // "" disables exclusion
	Unique        bool   `yaml:"unique"`
	Scope         string `yaml:"scope"` // CSS selector, "" = body
}

// FetchConfig configures HTTP loading of documents.
type FetchConfig struct {
	Timeout   string `yaml:"timeout"`
	MaxBytes  int64  `yaml:"max_bytes"`
	UserAgent string `yaml:"user_agent"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Exclude: textsearch.DefaultExclude,
		},
		Fetch: FetchConfig{
			Timeout:   "30s",
			MaxBytes:  2 << 20,
			UserAgent: "Mozilla/5.0 (compatible; domtext/1.0)",
		},
		Scan:    DefaultScanConfig(),
		Browser: DefaultBrowserConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Dir:    filepath.Join(".domtext", "logs"),
		},
	}
}

// Load reads configuration from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("DOMTEXT_BROWSER_URL"); url != "" {
		c.Browser.DebuggerURL = url
	}
	if bin := os.Getenv("DOMTEXT_CHROME_BIN"); bin != "" {
		c.Browser.Bin = bin
	}
	if level := os.Getenv("DOMTEXT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if ua := os.Getenv("DOMTEXT_USER_AGENT"); ua != "" {
		c.Fetch.UserAgent = ua
	}
}

// GetFetchTimeout returns the HTTP fetch timeout as a duration.
func (c *Config) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for values that would fail at use time.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Fetch.Timeout); err != nil {
		return fmt.Errorf("invalid fetch timeout %q: %w", c.Fetch.Timeout, err)
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch max_bytes must be positive, got %d", c.Fetch.MaxBytes)
	}
	if c.Browser.NavigationTimeoutMs < 0 || c.Browser.WaitStableMs < 0 {
		return fmt.Errorf("browser timeouts must not be negative")
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	q := textsearch.Query{Exclude: c.Search.Exclude}
	if err := q.Validate(); err != nil {
		return fmt.Errorf("invalid search.exclude: %w", err)
	}

	return nil
}

// Query returns a search query seeded with the configured defaults.
func (c *Config) Query() textsearch.Query {
	return textsearch.Query{
		CaseSensitive: c.Search.CaseSensitive,
		Exclude:       c.Search.Exclude,
		Unique:        c.Search.Unique,
	}
}
