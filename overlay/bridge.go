package overlay

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultTriggerToken is appended to the hand-off payload. The desktop
// consumer starts processing when it sees it on the clipboard.
const DefaultTriggerToken = "start_download"

// FormatPayload builds the clipboard payload "<url> <token>".
func FormatPayload(canonicalURL, token string) string {
	return canonicalURL + " " + token
}

// Bridge hands the current video off to the external consumer through the
// clipboard. Writes are fire-and-forget.
type Bridge struct {
	sink    ClipboardSink
	token   string
	param   string
	base    string
	timeout time.Duration
	guard   *guard
	logger  *slog.Logger

	ctx context.Context
	wg  sync.WaitGroup
}

// TriggerDownload formats the payload for location and starts the clipboard
// write. It never blocks on, nor reports, the outcome of the write.
func (b *Bridge) TriggerDownload(location string) {
	if b.sink == nil || !b.guard.live() {
		return
	}
	payload := FormatPayload(CanonicalURL(location, b.param, b.base), b.token)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Debug("overlay: clipboard sink panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(b.ctx), b.timeout)
		defer cancel()
		if err := b.sink.WriteText(ctx, payload); err != nil {
			b.logger.Debug("overlay: clipboard write failed", "error", err)
			return
		}
		b.logger.Info("overlay: payload handed off", "payload", payload)
	}()
}

// Wait blocks until every in-flight clipboard write has returned.
func (b *Bridge) Wait() { b.wg.Wait() }
