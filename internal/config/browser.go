package config

import "time"

// BrowserConfig configures headless Chrome rendering.
type BrowserConfig struct {
	DebuggerURL         string   `yaml:"debugger_url" json:"debugger_url"`
	Bin                 string   `yaml:"bin" json:"bin"`
	Flags               []string `yaml:"flags" json:"flags"`
	Headless            bool     `yaml:"headless" json:"headless"`
	ViewportWidth       int      `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight      int      `yaml:"viewport_height" json:"viewport_height"`
	NavigationTimeoutMs int      `yaml:"navigation_timeout_ms" json:"navigation_timeout_ms"`
	WaitStableMs        int      `yaml:"wait_stable_ms" json:"wait_stable_ms"` // 0 = wait for load only
}

// DefaultBrowserConfig returns sensible defaults.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:            true,
		ViewportWidth:       1920,
		ViewportHeight:      1080,
		NavigationTimeoutMs: 30000,
	}
}

// GetViewportWidth returns viewport width.
func (c BrowserConfig) GetViewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1920
	}
	return c.ViewportWidth
}

// GetViewportHeight returns viewport height.
func (c BrowserConfig) GetViewportHeight() int {
	if c.ViewportHeight == 0 {
		return 1080
	}
	return c.ViewportHeight
}

// NavigationTimeout returns the navigation timeout.
func (c BrowserConfig) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// WaitStable returns how long the DOM must stay unchanged before capture.
func (c BrowserConfig) WaitStable() time.Duration {
	return time.Duration(c.WaitStableMs) * time.Millisecond
}
