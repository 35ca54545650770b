package sink

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hazyhaar/pica/dbopen"
	"github.com/hazyhaar/pica/handoff"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func testRequest(id string, at time.Time) handoff.Request {
	return handoff.Request{
		ID:         id,
		URL:        "https://www.youtube.com/watch?v=abc123",
		VideoID:    "abc123",
		ReceivedAt: at,
	}
}

func TestStdout(t *testing.T) {
	var buf bytes.Buffer
	s := NewStdout(&buf)
	if err := s.Send(context.Background(), testRequest("r1", time.Unix(0, 0).UTC())); err != nil {
		t.Fatal(err)
	}

	var got struct {
		Type string          `json:"type"`
		Data handoff.Request `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("line %q: %v", buf.String(), err)
	}
	if got.Type != "handoff" || got.Data.ID != "r1" || got.Data.VideoID != "abc123" {
		t.Fatalf("got %+v", got)
	}
}

func TestWebhook_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond), WithWebhookLogger(quiet))
	if err := w.Send(context.Background(), testRequest("r1", time.Now())); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestWebhook_Exhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL,
		WithWebhookRetries(1),
		WithWebhookBackoff(time.Millisecond),
		WithWebhookLogger(quiet))
	if err := w.Send(context.Background(), testRequest("r1", time.Now())); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestWebhook_ClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL, WithWebhookBackoff(time.Millisecond), WithWebhookLogger(quiet))
	if err := w.Send(context.Background(), testRequest("r1", time.Now())); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestJournal_PendingAndDone(t *testing.T) {
	ctx := context.Background()
	j, err := NewJournal(dbopen.OpenMemory(t))
	if err != nil {
		t.Fatal(err)
	}

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"r2", "r1"} {
		if err := j.Send(ctx, testRequest(id, t0.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatal(err)
		}
	}
	// Duplicate ids are ignored.
	if err := j.Send(ctx, testRequest("r1", t0)); err != nil {
		t.Fatal(err)
	}

	pending, err := j.Pending(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].ID != "r2" || !pending[0].ReceivedAt.Equal(t0) {
		t.Fatalf("pending = %+v", pending)
	}

	if err := j.MarkDone(ctx, "r2", t0.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := j.MarkDone(ctx, "r2", t0.Add(time.Minute)); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("second MarkDone err = %v", err)
	}
	pending, _ = j.Pending(ctx, 10)
	if len(pending) != 1 || pending[0].ID != "r1" {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestOpenJournal_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "handoffs.db")
	j, err := OpenJournal(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Send(context.Background(), testRequest("r1", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	j, err = OpenJournal(path)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	pending, err := j.Pending(context.Background(), 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending after reopen = %+v, %v", pending, err)
	}
}

type failing struct{ closed bool }

func (f *failing) Send(context.Context, handoff.Request) error { return errors.New("down") }
func (f *failing) Close() error                                { f.closed = true; return nil }

func TestRouter_FanOut(t *testing.T) {
	var got []string
	cb := Callback(func(_ context.Context, req handoff.Request) error {
		got = append(got, req.ID)
		return nil
	})
	bad := &failing{}
	r := NewRouter(quiet, bad, cb)

	// WHAT: a failing sink does not stop delivery to the others.
	// WHY: the journal must not lose a request because a webhook is down.
	err := r.Send(context.Background(), testRequest("r1", time.Now()))
	if err == nil {
		t.Fatal("expected first error")
	}
	if len(got) != 1 || got[0] != "r1" {
		t.Fatalf("callback got %v", got)
	}
	if err := r.Close(); err != nil || !bad.closed {
		t.Fatalf("Close = %v, closed = %v", err, bad.closed)
	}
}
