package handoff

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hazyhaar/pica/internal/clipboard"
	"github.com/hazyhaar/pica/internal/idgen"
)

type recorder struct {
	mu   sync.Mutex
	reqs []Request
	err  error
}

func (r *recorder) Send(_ context.Context, req Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return r.err
}

func (r *recorder) all() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.reqs...)
}

func newTestPoller(t *testing.T, clip Clipboard, sink Sink) *Poller {
	t.Helper()
	p, err := NewPoller(Config{
		Clipboard: clip,
		Sink:      sink,
		Token:     "start_download",
		Interval:  5 * time.Millisecond,
		NewID:     idgen.Sequence("req-"),
		Now:       func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPoll_EmitsAndClears(t *testing.T) {
	ctx := context.Background()
	clip := &clipboard.Memory{}
	clip.WriteText(ctx, "https://www.youtube.com/shorts/xyz start_download")
	rec := &recorder{}
	p := newTestPoller(t, clip, rec)

	req, err := p.Poll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if req == nil || req.ID != "req-1" || req.URL != "https://www.youtube.com/watch?v=xyz" || req.VideoID != "xyz" {
		t.Fatalf("req = %+v", req)
	}
	if text, _ := clip.ReadText(ctx); text != "" {
		t.Fatalf("clipboard not cleared: %q", text)
	}

	// WHAT: a cleared clipboard does not trigger again.
	// WHY: the payload is a one-shot signal.
	if req, _ := p.Poll(ctx); req != nil {
		t.Fatalf("second poll emitted %+v", req)
	}
	if n := len(rec.all()); n != 1 {
		t.Fatalf("sink got %d requests", n)
	}
}

func TestPoll_IgnoresUserContent(t *testing.T) {
	ctx := context.Background()
	for _, text := range []string{
		"just some text",
		"https://www.youtube.com/watch?v=abc",
		"https://example.com/ start_download",
	} {
		clip := &clipboard.Memory{}
		clip.WriteText(ctx, text)
		p := newTestPoller(t, clip, &recorder{})
		req, err := p.Poll(ctx)
		if req != nil || err != nil {
			t.Errorf("Poll(%q) = %+v, %v", text, req, err)
		}
		if got, _ := clip.ReadText(ctx); got != text {
			t.Errorf("clipboard changed: %q", got)
		}
	}
}

type stubbornClipboard struct {
	clipboard.Memory
}

func (s *stubbornClipboard) WriteText(context.Context, string) error {
	return errors.New("clipboard busy")
}

func TestPoll_ClearFailureEmitsOnce(t *testing.T) {
	ctx := context.Background()
	clip := &stubbornClipboard{}
	clip.Memory.WriteText(ctx, "https://www.youtube.com/watch?v=abc start_download")
	rec := &recorder{}
	p := newTestPoller(t, clip, rec)

	for i := 0; i < 3; i++ {
		if _, err := p.Poll(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(rec.all()); n != 1 {
		t.Fatalf("sink got %d requests, want 1", n)
	}

	// A different payload is a new hand-off.
	clip.Memory.WriteText(ctx, "https://www.youtube.com/watch?v=def start_download")
	p.Poll(ctx)
	if reqs := rec.all(); len(reqs) != 2 || reqs[1].VideoID != "def" {
		t.Fatalf("reqs = %+v", reqs)
	}
}

func TestPoll_SinkError(t *testing.T) {
	ctx := context.Background()
	clip := &clipboard.Memory{}
	clip.WriteText(ctx, "https://youtu.be/abc start_download")
	p := newTestPoller(t, clip, &recorder{err: errors.New("down")})

	req, err := p.Poll(ctx)
	if err == nil || req == nil {
		t.Fatalf("req = %+v, err = %v", req, err)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clip := &clipboard.Memory{}
	clip.WriteText(ctx, "https://youtu.be/abc start_download")
	rec := &recorder{}
	p := newTestPoller(t, clip, rec)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for len(rec.all()) == 0 {
		select {
		case <-deadline:
			t.Fatal("no request emitted")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestNewPoller_Validation(t *testing.T) {
	if _, err := NewPoller(Config{Token: "x"}); err == nil {
		t.Error("missing clipboard and sink accepted")
	}
	if _, err := NewPoller(Config{Clipboard: &clipboard.Memory{}, Sink: &recorder{}}); err == nil {
		t.Error("empty token accepted")
	}
}
