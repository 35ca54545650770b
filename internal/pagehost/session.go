// CLAUDE:SUMMARY Drives overlay activations on a rod page: bridge injection, binding events, reload handling and the single-threaded event loop.
// Package pagehost runs the overlay inside a live Chrome tab. It injects a
// small bridge script, turns its binding calls into DOM change and click
// notifications, and processes them one at a time on a single loop
// goroutine. Every page load starts a fresh activation; the previous one
// notices on its next liveness check and goes quiet.
package pagehost

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/pica/internal/idgen"
	"github.com/hazyhaar/pica/overlay"
)

//go:embed bridge.js
var bridgeJS string

const bindingName = "__pica_binding"

// Config for a Session.
type Config struct {
	Page *rod.Page

	// Overlay is the template for every activation. Document, Location,
	// Liveness and Logger are filled by the session.
	Overlay overlay.Config

	// ActivationID names activations. Default: UUIDv7.
	ActivationID idgen.Generator

	Logger *slog.Logger
}

// Session owns the overlay lifecycle of one tab.
type Session struct {
	page   *rod.Page
	tmpl   overlay.Config
	newID  idgen.Generator
	logger *slog.Logger
	q      *queue

	cur         *activation
	current     atomic.Pointer[overlay.Overlay]
	activations atomic.Uint64
}

type activation struct {
	id      string
	host    *Host
	overlay *overlay.Overlay
}

// bindingMessage is what the bridge sends through the binding.
type bindingMessage struct {
	Kind    string `json:"kind"` // mutation | activate
	ID      string `json:"id"`
	Handler string `json:"handler,omitempty"`
}

// New creates a Session for cfg.Page. Call Run to start it.
func New(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ActivationID == nil {
		cfg.ActivationID = idgen.UUIDv7()
	}
	return &Session{
		page:   cfg.Page,
		tmpl:   cfg.Overlay,
		newID:  cfg.ActivationID,
		logger: cfg.Logger,
		q:      newQueue(),
	}
}

// Run installs the binding, starts the first activation and processes
// page events until ctx is done. In-flight clipboard writes are drained
// before it returns.
func (s *Session) Run(ctx context.Context) error {
	page := s.page.Context(ctx)

	if err := (proto.RuntimeAddBinding{Name: bindingName}).Call(page); err != nil {
		return fmt.Errorf("pagehost: add binding: %w", err)
	}
	if err := (proto.PageEnable{}).Call(page); err != nil {
		return fmt.Errorf("pagehost: enable page events: %w", err)
	}

	wait := page.EachEvent(
		func(e *proto.RuntimeBindingCalled) {
			if e.Name == bindingName {
				s.onBinding(e.Payload)
			}
		},
		func(e *proto.PageLoadEventFired) {
			s.q.push(task{kind: taskLoad})
		},
	)
	go wait()

	s.q.push(task{kind: taskLoad})
	s.logger.Info("pagehost: session started", "target", s.page.TargetID)

	defer s.shutdown()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.q.ready:
		}
		for _, t := range s.q.drain() {
			s.handle(ctx, t)
		}
	}
}

// Status returns the status of the current activation. ok is false until
// the first activation has started.
func (s *Session) Status() (st overlay.Status, ok bool) {
	ov := s.current.Load()
	if ov == nil {
		return overlay.Status{}, false
	}
	return ov.Status(), true
}

// Activations counts activations started so far.
func (s *Session) Activations() uint64 { return s.activations.Load() }

// Coalesced counts DOM notifications merged into an already pending one.
func (s *Session) Coalesced() uint64 { return s.q.coalesced() }

func (s *Session) onBinding(payload string) {
	var msg bindingMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		s.logger.Debug("pagehost: bad binding payload", "error", err)
		return
	}
	switch msg.Kind {
	case "mutation":
		s.q.push(task{kind: taskNotify, activation: msg.ID})
	case "activate":
		s.q.push(task{kind: taskActivate, activation: msg.ID, handler: msg.Handler})
	}
}

func (s *Session) handle(ctx context.Context, t task) {
	switch t.kind {
	case taskLoad:
		s.activate(ctx)
	case taskNotify:
		if a := s.cur; a != nil && a.id == t.activation {
			a.host.notify()
		}
	case taskActivate:
		if a := s.cur; a != nil && a.id == t.activation {
			if !a.host.dispatch(t.handler) {
				s.logger.Debug("pagehost: stale handler", "handler", t.handler)
			}
		}
	}
}

// activate injects a fresh bridge and starts a new overlay bound to it.
func (s *Session) activate(ctx context.Context) {
	if s.cur != nil {
		s.cur.overlay.Stop()
		s.cur = nil
	}

	id := s.newID()
	containerID := s.tmpl.ContainerID
	if containerID == "" {
		containerID = overlay.DefaultContainerID
	}
	if _, err := s.page.Context(ctx).Eval(bridgeJS, id, styleSheet(containerID), styleElementID); err != nil {
		// The page is mid-navigation; its load event brings us back here.
		s.logger.Debug("pagehost: inject bridge failed", "activation", id, "error", err)
		return
	}

	host := newHost(ctx, s.page, id)
	cfg := s.tmpl
	cfg.Document = host
	cfg.Location = host
	cfg.Liveness = host
	cfg.Logger = s.logger.With("activation", id)

	ov := overlay.New(cfg)
	s.cur = &activation{id: id, host: host, overlay: ov}
	s.current.Store(ov)
	s.activations.Add(1)
	s.logger.Info("pagehost: activation started", "activation", id)

	ov.Start(ctx, host)
}

func (s *Session) shutdown() {
	if s.cur == nil {
		return
	}
	s.cur.overlay.Stop()
	s.cur.overlay.Wait()
	s.logger.Info("pagehost: session stopped", "activations", s.activations.Load(), "coalesced", s.q.coalesced())
}
