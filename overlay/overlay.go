// CLAUDE:SUMMARY Assembles the overlay state machine: identity tracking, per-video dismissal, idempotent mounting and clipboard hand-off.
// Package overlay keeps one control overlay on a video page of a
// single-page application. Navigation is detected only by watching DOM
// change notifications and comparing the identity of the current location
// with the last one seen. The overlay is shown on a fresh video, stays
// hidden once dismissed for that video, and comes back when the identity
// changes.
//
// The package never touches a browser directly: the document, location,
// notification stream, clipboard and liveness check are injected, so the
// whole state machine runs against an in-memory document in tests and
// against a rod-driven tab in production.
package overlay

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Defaults for Config.
const (
	DefaultContainerID   = "pica-overlay-container"
	DefaultQueryParam    = "v"
	DefaultCanonicalBase = "https://www.youtube.com/watch"
	DefaultIconPath      = "icons/download.svg"
	DefaultDownloadTitle = "Download this video with Pica."
	DefaultDownloadLabel = "Download with Pica"
)

// DefaultPlayerSelectors locate the regular player first, then the
// short-form player.
var DefaultPlayerSelectors = []string{".html5-video-player", "ytd-reel-video-renderer"}

// Config wires the overlay to its host.
type Config struct {
	Document  Document
	Location  Location
	Liveness  Liveness         // nil = always alive
	Clipboard ClipboardSink    // nil = hand-off disabled
	Icons     ResourceResolver // nil = no icon

	ContainerID     string
	PlayerSelectors []string
	QueryParam      string
	CanonicalBase   string
	TriggerToken    string
	IconPath        string
	DownloadTitle   string
	DownloadLabel   string
	Scope           DismissalScope

	// ClipboardTimeout bounds a single clipboard write. Default: 5s.
	ClipboardTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.ContainerID == "" {
		c.ContainerID = DefaultContainerID
	}
	if len(c.PlayerSelectors) == 0 {
		c.PlayerSelectors = DefaultPlayerSelectors
	}
	if c.QueryParam == "" {
		c.QueryParam = DefaultQueryParam
	}
	if c.CanonicalBase == "" {
		c.CanonicalBase = DefaultCanonicalBase
	}
	if c.TriggerToken == "" {
		c.TriggerToken = DefaultTriggerToken
	}
	if c.IconPath == "" {
		c.IconPath = DefaultIconPath
	}
	if c.DownloadTitle == "" {
		c.DownloadTitle = DefaultDownloadTitle
	}
	if c.DownloadLabel == "" {
		c.DownloadLabel = DefaultDownloadLabel
	}
	if c.ClipboardTimeout <= 0 {
		c.ClipboardTimeout = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Status is a point-in-time view of the overlay, safe to read from any
// goroutine.
type Status struct {
	Identity  string `json:"identity"`
	Dismissed bool   `json:"dismissed"`
	Mounted   bool   `json:"mounted"`
	Alive     bool   `json:"alive"`
	Passes    uint64 `json:"passes"`
}

// Overlay is one activation of the overlay on a page. All methods except
// Status and Wait must be called from the host's single callback chain.
type Overlay struct {
	state   *State
	guard   *guard
	bridge  *Bridge
	ctrl    *Controller
	watcher *Watcher

	passes uint64
	status atomic.Pointer[Status]
}

// New assembles an Overlay from cfg.
func New(cfg Config) *Overlay {
	cfg.defaults()

	o := &Overlay{state: NewState(cfg.Scope)}
	o.guard = &guard{alive: cfg.Liveness, logger: cfg.Logger}
	o.bridge = &Bridge{
		sink:    cfg.Clipboard,
		token:   cfg.TriggerToken,
		param:   cfg.QueryParam,
		base:    cfg.CanonicalBase,
		timeout: cfg.ClipboardTimeout,
		guard:   o.guard,
		logger:  cfg.Logger,
		ctx:     context.Background(),
	}
	o.ctrl = &Controller{
		doc:    cfg.Document,
		loc:    cfg.Location,
		icons:  cfg.Icons,
		state:  o.state,
		bridge: o.bridge,
		guard:  o.guard,
		logger: cfg.Logger,
		cfg:    &cfg,
	}
	o.watcher = &Watcher{
		loc:    cfg.Location,
		state:  o.state,
		ctrl:   o.ctrl,
		guard:  o.guard,
		param:  cfg.QueryParam,
		logger: cfg.Logger,
	}
	o.ctrl.changed = o.publish
	o.guard.onDead = o.watcher.Stop
	o.publish()
	return o
}

// Start subscribes to src and runs the initial pass. ctx scopes the
// clipboard writes started by this activation.
func (o *Overlay) Start(ctx context.Context, src NotificationSource) {
	o.bridge.ctx = ctx
	o.watcher.Start(src, o.Notify)
}

// Notify handles one DOM change notification.
func (o *Overlay) Notify() {
	o.guard.run("notify", o.watcher.pass)
	o.passes++
	o.publish()
}

// Ensure mounts the overlay when the current state allows it.
func (o *Overlay) Ensure() {
	o.guard.run("ensure", o.ctrl.Ensure)
	o.publish()
}

// Stop ends the subscription. In-flight clipboard writes are not
// interrupted; use Wait to drain them.
func (o *Overlay) Stop() {
	o.watcher.Stop()
	o.publish()
}

// Wait blocks until in-flight clipboard writes have returned.
func (o *Overlay) Wait() { o.bridge.Wait() }

// Status returns the last published status.
func (o *Overlay) Status() Status { return *o.status.Load() }

func (o *Overlay) publish() {
	cur := o.state.Current()
	o.status.Store(&Status{
		Identity:  cur.Identity,
		Dismissed: cur.Dismissed,
		Mounted:   o.ctrl.mounted,
		Alive:     !o.guard.dead.Load(),
		Passes:    o.passes,
	})
}
