// CLAUDE:SUMMARY Defines pica config structs and parses YAML configuration files with defaults.
// Package config handles pica configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/pica/overlay"
)

// Config is the top-level configuration shared by picaoverlay and
// picahandoff.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Page      PageConfig      `yaml:"page"`
	Clipboard ClipboardConfig `yaml:"clipboard"`
	Status    StatusConfig    `yaml:"status"`
	Handoff   HandoffConfig   `yaml:"handoff"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`
	Mode             string        `yaml:"mode"` // headful | headless | xvfb
	UserDataDir      string        `yaml:"user_data_dir"`
	ResourceBlocking []string      `yaml:"resource_blocking"`
	XvfbDisplay      string        `yaml:"xvfb_display"`
	NavigateTimeout  time.Duration `yaml:"navigate_timeout"`
}

// PageConfig describes the watch page and the overlay mounted on it.
type PageConfig struct {
	URL             string   `yaml:"url"`
	PlayerSelectors []string `yaml:"player_selectors"`
	ContainerID     string   `yaml:"container_id"`
	QueryParam      string   `yaml:"query_param"`
	CanonicalBase   string   `yaml:"canonical_base"`
	IconPath        string   `yaml:"icon_path"`
	DismissalScope  string   `yaml:"dismissal_scope"` // navigation | identity
}

// ClipboardConfig selects where the hand-off payload goes.
type ClipboardConfig struct {
	Mode         string        `yaml:"mode"` // system | page
	TriggerToken string        `yaml:"trigger_token"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StatusConfig enables the status HTTP endpoint. Empty Addr disables it.
type StatusConfig struct {
	Addr string `yaml:"addr"`
}

// HandoffConfig drives the clipboard consumer.
type HandoffConfig struct {
	Interval time.Duration `yaml:"interval"`
	Sinks    []SinkConfig  `yaml:"sinks"`
}

// SinkConfig defines a hand-off output backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook | journal
	URL  string `yaml:"url"`  // for webhook
	Path string `yaml:"path"` // for journal
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Browser.Mode == "" {
		c.Browser.Mode = "headful"
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	if c.Page.URL == "" {
		c.Page.URL = "https://www.youtube.com/"
	}
	if len(c.Page.PlayerSelectors) == 0 {
		c.Page.PlayerSelectors = overlay.DefaultPlayerSelectors
	}
	if c.Page.ContainerID == "" {
		c.Page.ContainerID = overlay.DefaultContainerID
	}
	if c.Page.QueryParam == "" {
		c.Page.QueryParam = overlay.DefaultQueryParam
	}
	if c.Page.CanonicalBase == "" {
		c.Page.CanonicalBase = overlay.DefaultCanonicalBase
	}
	if c.Page.IconPath == "" {
		c.Page.IconPath = overlay.DefaultIconPath
	}
	if c.Page.DismissalScope == "" {
		c.Page.DismissalScope = "navigation"
	}
	if c.Clipboard.Mode == "" {
		c.Clipboard.Mode = "system"
	}
	if c.Clipboard.TriggerToken == "" {
		c.Clipboard.TriggerToken = overlay.DefaultTriggerToken
	}
	if c.Clipboard.WriteTimeout <= 0 {
		c.Clipboard.WriteTimeout = 5 * time.Second
	}
	if c.Handoff.Interval <= 0 {
		c.Handoff.Interval = 800 * time.Millisecond
	}
}

func (c *Config) validate() error {
	switch c.Browser.Mode {
	case "headful", "headless", "xvfb":
	default:
		return fmt.Errorf("config: unknown browser mode %q", c.Browser.Mode)
	}
	switch c.Clipboard.Mode {
	case "system", "page":
	default:
		return fmt.Errorf("config: unknown clipboard mode %q", c.Clipboard.Mode)
	}
	if _, err := overlay.ParseDismissalScope(c.Page.DismissalScope); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for i, sc := range c.Handoff.Sinks {
		switch sc.Type {
		case "stdout":
		case "webhook":
			if sc.URL == "" {
				return fmt.Errorf("config: handoff sink %d: webhook needs url", i)
			}
		case "journal":
			if sc.Path == "" {
				return fmt.Errorf("config: handoff sink %d: journal needs path", i)
			}
		default:
			return fmt.Errorf("config: handoff sink %d: unknown type %q", i, sc.Type)
		}
	}
	return nil
}

// OverlayConfig maps the page section onto an overlay.Config. Host
// interfaces are left for the caller to fill.
func (c *Config) OverlayConfig() overlay.Config {
	scope, _ := overlay.ParseDismissalScope(c.Page.DismissalScope)
	return overlay.Config{
		ContainerID:      c.Page.ContainerID,
		PlayerSelectors:  c.Page.PlayerSelectors,
		QueryParam:       c.Page.QueryParam,
		CanonicalBase:    c.Page.CanonicalBase,
		TriggerToken:     c.Clipboard.TriggerToken,
		IconPath:         c.Page.IconPath,
		Scope:            scope,
		ClipboardTimeout: c.Clipboard.WriteTimeout,
	}
}
