// CLAUDE:SUMMARY Consumer side of the clipboard hand-off: polls the clipboard for trigger payloads and emits download requests.
// Package handoff is the receiving end of the overlay's clipboard
// protocol. A Poller reads the clipboard on a fixed interval; when it sees
// "<video url> <token>" it clears the clipboard, so the payload triggers
// once, and emits a Request to a Sink.
package handoff

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/pica/internal/idgen"
)

// DefaultInterval is the clipboard polling period.
const DefaultInterval = 800 * time.Millisecond

// Request is one accepted hand-off.
type Request struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	VideoID    string    `json:"video_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Clipboard is what the poller reads and clears.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// Sink receives accepted requests.
type Sink interface {
	Send(ctx context.Context, req Request) error
}

// Config for a Poller.
type Config struct {
	Clipboard Clipboard
	Sink      Sink
	Token     string
	Interval  time.Duration
	NewID     idgen.Generator
	Now       func() time.Time
	Logger    *slog.Logger
}

// Poller watches the clipboard for hand-off payloads.
type Poller struct {
	clip     Clipboard
	sink     Sink
	token    string
	interval time.Duration
	newID    idgen.Generator
	now      func() time.Time
	logger   *slog.Logger

	// stuck holds a payload already emitted whose clear failed, so it is
	// not emitted again on every tick.
	stuck string
}

// NewPoller creates a Poller. Clipboard and Sink are required.
func NewPoller(cfg Config) (*Poller, error) {
	if cfg.Clipboard == nil || cfg.Sink == nil {
		return nil, fmt.Errorf("handoff: clipboard and sink are required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("handoff: empty trigger token")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.NewID == nil {
		cfg.NewID = idgen.UUIDv7()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Poller{
		clip:     cfg.Clipboard,
		sink:     cfg.Sink,
		token:    cfg.Token,
		interval: cfg.Interval,
		newID:    cfg.NewID,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}, nil
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("handoff: polling clipboard", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if _, err := p.Poll(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("handoff: poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll reads the clipboard once. It returns the emitted request, or nil
// when the clipboard holds no new hand-off.
func (p *Poller) Poll(ctx context.Context) (*Request, error) {
	text, err := p.clip.ReadText(ctx)
	if err != nil {
		return nil, fmt.Errorf("handoff: read clipboard: %w", err)
	}
	if text == p.stuck && text != "" {
		return nil, nil
	}
	p.stuck = ""

	link, err := Parse(text, p.token)
	if err != nil {
		// Anything else on the clipboard belongs to the user.
		return nil, nil
	}

	req := Request{
		ID:         p.newID(),
		URL:        link.URL,
		VideoID:    link.VideoID,
		ReceivedAt: p.now().UTC(),
	}

	if err := p.clip.WriteText(ctx, ""); err != nil {
		p.stuck = text
		p.logger.Warn("handoff: clear clipboard failed", "error", err)
	}

	if err := p.sink.Send(ctx, req); err != nil {
		return &req, fmt.Errorf("handoff: emit %s: %w", req.ID, err)
	}
	p.logger.Info("handoff: request emitted", "id", req.ID, "url", req.URL)
	return &req, nil
}
