package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("browser settings", func(t *testing.T) {
		t.Setenv("DOMTEXT_BROWSER_URL", "ws://127.0.0.1:9222/devtools/browser/abc")
		t.Setenv("DOMTEXT_CHROME_BIN", "/usr/bin/chromium")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", cfg.Browser.DebuggerURL)
		assert.Equal(t, "/usr/bin/chromium", cfg.Browser.Bin)
	})

	t.Run("empty values leave config untouched", func(t *testing.T) {
		t.Setenv("DOMTEXT_LOG_LEVEL", "")
		t.Setenv("DOMTEXT_USER_AGENT", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, DefaultConfig().Fetch.UserAgent, cfg.Fetch.UserAgent)
	})

	t.Run("log level and user agent", func(t *testing.T) {
		t.Setenv("DOMTEXT_LOG_LEVEL", "debug")
		t.Setenv("DOMTEXT_USER_AGENT", "probe/2")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "probe/2", cfg.Fetch.UserAgent)
	})
}
