// Package browser renders pages in headless Chrome so that text produced by
// scripts is searchable. A Renderer owns one browser connection and hands
// back the serialized DOM of each rendered page.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"domtext/internal/config"
	"domtext/internal/logging"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// newLauncher builds a launcher from Bin and Flags. Flags take the form
// "--name" or "--name=value".
func newLauncher(c config.BrowserConfig) *launcher.Launcher {
	l := launcher.New().Headless(c.Headless)
	if c.Bin != "" {
		l = l.Bin(c.Bin)
	}
	for _, rawFlag := range c.Flags {
		flagStr := strings.TrimLeft(rawFlag, "-")
		name, val, hasVal := strings.Cut(flagStr, "=")
		if hasVal {
			l = l.Set(flags.Flag(name), val)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}
	return l
}

// Renderer owns a Chrome connection, either to an existing instance at
// DebuggerURL or to one it launched itself.
type Renderer struct {
	cfg        config.BrowserConfig
	mu         sync.RWMutex
	browser    *rod.Browser
	launched   *launcher.Launcher
	controlURL string
}

// NewRenderer creates a renderer. Nothing is started until Start or Render.
func NewRenderer(cfg config.BrowserConfig) *Renderer {
	return &Renderer{cfg: cfg}
}

// Start connects to an existing Chrome or launches a new one.
func (r *Renderer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// If we already have a browser, verify it's still alive
	if r.browser != nil {
		if _, err := r.browser.Version(); err == nil {
			return nil
		}
		logging.BrowserWarn("Stale browser connection detected, reconnecting")
		_ = r.browser.Close()
		r.browser = nil
		r.controlURL = ""
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	controlURL := r.cfg.DebuggerURL
	if controlURL == "" {
		l := newLauncher(r.cfg)
		url, err := l.Launch()
		if err != nil {
			return fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
		r.launched = l
	}

	// The connection outlives ctx; each Render binds its own context to the page.
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		r.killLaunchedLocked()
		return fmt.Errorf("connect to chrome: %w", err)
	}

	r.browser = browser
	r.controlURL = controlURL
	logging.Browser("Connected to chrome at %s", controlURL)
	return nil
}

func (r *Renderer) ensureStarted(ctx context.Context) error {
	r.mu.RLock()
	if r.browser != nil {
		r.mu.RUnlock()
		return nil
	}
	r.mu.RUnlock()
	return r.Start(ctx)
}

// ControlURL returns the WebSocket debugger URL.
func (r *Renderer) ControlURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.controlURL
}

// IsConnected returns whether the browser is connected.
func (r *Renderer) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.browser != nil
}

// Render loads url in a fresh incognito context, waits for the load event
// (and for DOM stability when configured) and returns the page's outer HTML.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if err := r.ensureStarted(ctx); err != nil {
		return "", err
	}

	r.mu.RLock()
	browser := r.browser
	r.mu.RUnlock()
	if browser == nil {
		return "", errors.New("browser not connected")
	}

	id := uuid.NewString()
	timer := logging.StartTimer(logging.CategoryBrowser, "render "+id)
	defer timer.Stop()
	logging.BrowserDebug("Render %s: %s", id, url)

	incognito, err := browser.Incognito()
	if err != nil {
		return "", fmt.Errorf("incognito context: %w", err)
	}
	defer func() { _ = incognito.Close() }()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.GetViewportWidth(),
		Height:            r.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		logging.BrowserWarn("failed to set viewport: %v", err)
	}

	p := page.Context(ctx).Timeout(r.cfg.NavigationTimeout())
	if err := p.Navigate(url); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load %s: %w", url, err)
	}
	if d := r.cfg.WaitStable(); d > 0 {
		if err := p.WaitStable(d); err != nil {
			logging.BrowserWarn("page %s did not settle: %v", url, err)
		}
	}

	source, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("read dom %s: %w", url, err)
	}
	logging.Browser("Rendered %s (%d bytes)", url, len(source))
	return source, nil
}

// Shutdown closes the browser. A Chrome process this renderer launched is
// killed; a remote one is only disconnected.
func (r *Renderer) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		if r.launched != nil {
			err = r.browser.Close()
		}
		r.browser = nil
	}
	r.killLaunchedLocked()
	r.controlURL = ""
	return err
}

func (r *Renderer) killLaunchedLocked() {
	if r.launched != nil {
		r.launched.Kill()
		r.launched = nil
	}
}
