package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/pica/handoff"
	"github.com/hazyhaar/pica/handoff/sink"
	"github.com/hazyhaar/pica/internal/config"
)

func TestBuildSinks_Journal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handoffs.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r, err := buildSinks([]config.SinkConfig{{Type: "journal", Path: path}}, logger)
	if err != nil {
		t.Fatal(err)
	}
	req := handoff.Request{ID: "r1", URL: "https://www.youtube.com/watch?v=a", VideoID: "a", ReceivedAt: time.Now()}
	if err := r.Send(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	j, err := sink.OpenJournal(path)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()
	pending, err := j.Pending(context.Background(), 10)
	if err != nil || len(pending) != 1 || pending[0].ID != "r1" {
		t.Fatalf("pending = %+v, %v", pending, err)
	}
}
