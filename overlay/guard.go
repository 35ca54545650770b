package overlay

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

// guard is the boundary every entry point (notification pass, button
// activation) runs through. Once the hosting context is found invalid the
// guard latches dead and all later calls return immediately.
type guard struct {
	alive  Liveness
	logger *slog.Logger
	dead   atomic.Bool
	onDead func()
}

// live checks liveness, latching the guard dead on the first failure.
func (g *guard) live() bool {
	if g.dead.Load() {
		return false
	}
	if g.alive != nil && !g.alive.Alive() {
		g.abandon()
		return false
	}
	return true
}

// run executes fn when the context is live. Invalidation is swallowed;
// other errors and panics are logged and contained to this call.
func (g *guard) run(op string, fn func() error) {
	if !g.live() {
		return
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if err, ok := r.(error); ok && errors.Is(err, ErrContextInvalidated) {
			g.abandon()
			return
		}
		g.logger.Error("overlay: panic recovered",
			"op", op, "panic", r, "stack", string(debug.Stack()))
	}()

	if err := fn(); err != nil {
		if errors.Is(err, ErrContextInvalidated) {
			g.abandon()
			return
		}
		g.logger.Error("overlay: operation failed", "op", op, "error", err)
	}
}

func (g *guard) abandon() {
	if !g.dead.CompareAndSwap(false, true) {
		return
	}
	g.logger.Debug("overlay: context gone, abandoning")
	if g.onDead != nil {
		g.onDead()
	}
}
