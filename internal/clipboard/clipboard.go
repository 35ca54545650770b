// Package clipboard adapts the operating system clipboard to the
// context-aware interfaces used by the overlay and the hand-off poller.
package clipboard

import (
	"context"
	"errors"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available
// (e.g. no xclip/xsel/wl-clipboard on Linux).
var ErrUnsupported = errors.New("clipboard: unsupported on this system")

// System is the OS clipboard. atotto/clipboard shells out on Linux, so
// every call runs in its own goroutine and gives up when ctx is done.
type System struct{}

func (System) WriteText(ctx context.Context, text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	_, err := await(ctx, func() (string, error) {
		return "", clipboard.WriteAll(text)
	})
	return err
}

func (System) ReadText(ctx context.Context) (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}
	return await(ctx, clipboard.ReadAll)
}

func await(ctx context.Context, fn func() (string, error)) (string, error) {
	type result struct {
		s   string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		s, err := fn()
		ch <- result{s, err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.s, r.err
	}
}

// Func adapts a function to the overlay clipboard sink.
type Func func(ctx context.Context, text string) error

func (f Func) WriteText(ctx context.Context, text string) error { return f(ctx, text) }

// Memory is an in-process clipboard.
type Memory struct {
	mu     sync.Mutex
	text   string
	writes int
}

func (m *Memory) WriteText(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.writes++
	return nil
}

func (m *Memory) ReadText(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// Writes counts WriteText calls.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
