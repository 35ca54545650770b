// CLAUDE:SUMMARY Launches or attaches to Chrome through rod in headful, headless or Xvfb mode and closes it cleanly.
// Package browser manages the Chrome instance the overlay lives in: launch
// a local Chrome (visible, headless, or on an Xvfb display) or attach to a
// running one through its DevTools URL.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Mode controls how Chrome is displayed.
type Mode int

const (
	ModeHeadful  Mode = iota // visible window on the user's display
	ModeHeadless             // no window
	ModeXvfb                 // visible window on a virtual display
)

// ParseMode maps a configuration value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "headful":
		return ModeHeadful, nil
	case "headless":
		return ModeHeadless, nil
	case "xvfb":
		return ModeXvfb, nil
	}
	return ModeHeadful, fmt.Errorf("browser: unknown mode %q", s)
}

func (m Mode) String() string {
	switch m {
	case ModeHeadful:
		return "headful"
	case ModeHeadless:
		return "headless"
	case ModeXvfb:
		return "xvfb"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	Mode Mode

	// UserDataDir keeps the profile (and its logged-in session) between
	// runs. Empty = throwaway profile.
	UserDataDir string

	// ResourceBlocking lists resource types to block (images, fonts, media, stylesheets).
	ResourceBlocking []string

	// XvfbDisplay for ModeXvfb. Default: ":99".
	XvfbDisplay string

	// NavigateTimeout bounds the initial navigation of a tab. Default: 30s.
	NavigateTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.XvfbDisplay == "" {
		c.XvfbDisplay = ":99"
	}
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns one Chrome connection.
type Manager struct {
	cfg     Config
	mu      sync.RWMutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	xvfb    *virtualDisplay
	closed  bool
}

// NewManager creates a browser Manager. Call Start to launch Chrome.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance) and returns
// the Rod browser handle.
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("browser: manager is closed")
	}
	if m.browser != nil {
		return m.browser, nil
	}

	b, err := m.launch(ctx)
	if err != nil {
		m.cleanup()
		return nil, err
	}
	m.browser = b
	return b, nil
}

// Browser returns the current Rod browser handle. Thread-safe.
func (m *Manager) Browser() *rod.Browser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser
}

// Close disconnects from Chrome and stops whatever this manager launched.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.cleanup()
}

func (m *Manager) launch(ctx context.Context) (*rod.Browser, error) {
	log := m.cfg.Logger

	var wsURL string

	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Context(ctx)

		switch m.cfg.Mode {
		case ModeHeadless:
			l = l.Headless(true)
		case ModeXvfb:
			vd, err := startXvfb(ctx, m.cfg.XvfbDisplay, log)
			if err != nil {
				return nil, fmt.Errorf("browser: %w", err)
			}
			m.xvfb = vd
			l = l.Headless(false).Env(vd.env(os.Environ())...)
		default:
			l = l.Headless(false)
		}
		if m.cfg.UserDataDir != "" {
			l = l.UserDataDir(m.cfg.UserDataDir)
		}

		// Anti-detection flags.
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "mode", m.cfg.Mode)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	return b, nil
}

func (m *Manager) cleanup() error {
	var err error
	if m.browser != nil {
		// A remote browser belongs to the user: drop the connection only.
		if m.lnch != nil {
			err = m.browser.Close()
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	m.xvfb.stop()
	m.xvfb = nil
	return err
}
