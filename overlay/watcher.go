package overlay

import (
	"fmt"
	"log/slog"
	"sync"
)

// Watcher detects navigation by comparing the identity of the current
// location on every DOM change notification.
type Watcher struct {
	loc    Location
	state  *State
	ctrl   *Controller
	guard  *guard
	param  string
	logger *slog.Logger

	// stale is set on identity change and cleared once the previous
	// overlay is confirmed gone.
	stale bool

	mu          sync.Mutex
	unsubscribe func()
}

// Start subscribes to src and runs an initial pass. Nothing happens when
// the hosting context is already gone.
func (w *Watcher) Start(src NotificationSource, notify func()) {
	if !w.guard.live() {
		return
	}
	unsubscribe := src.Subscribe(notify)

	w.mu.Lock()
	w.unsubscribe = unsubscribe
	w.mu.Unlock()

	notify()
}

// Stop cancels the subscription. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	unsubscribe := w.unsubscribe
	w.unsubscribe = nil
	w.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// pass handles one notification: reset on identity change, then ensure.
// A failed unmount is retried by every later pass until it succeeds.
func (w *Watcher) pass() error {
	href, err := w.loc.Href()
	if err != nil {
		return fmt.Errorf("overlay: read location: %w", err)
	}

	identity := IdentityOf(href, w.param)
	if w.state.Advance(identity) {
		w.logger.Debug("overlay: identity changed", "identity", identity)
		w.stale = true
	}
	if w.stale {
		if err := w.ctrl.Unmount(); err != nil {
			return err
		}
		w.stale = false
	}
	return w.ctrl.Ensure()
}
