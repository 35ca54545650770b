// CLAUDE:SUMMARY Local HTTP status endpoint (chi): /health and /state exposing the current overlay status as JSON.
// Package statusapi serves a small read-only HTTP view of the running
// overlay for local tooling.
package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/pica/overlay"
)

// Source provides the current overlay status. ok is false until the first
// activation.
type Source interface {
	Status() (st overlay.Status, ok bool)
}

// Counters are optional session counters reported next to the status.
type Counters interface {
	Activations() uint64
	Coalesced() uint64
}

type stateResponse struct {
	overlay.Status
	Activations uint64 `json:"activations,omitempty"`
	Coalesced   uint64 `json:"coalesced,omitempty"`
}

// NewRouter returns the status handler.
func NewRouter(src Source, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, recoverer(logger), requestLog(logger))
	r.Use(middleware.GetHead, middleware.NoCache, securityHeaders)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/state", func(w http.ResponseWriter, _ *http.Request) {
		st, ok := src.Status()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no activation yet"})
			return
		}
		resp := stateResponse{Status: st}
		if c, ok := src.(Counters); ok {
			resp.Activations = c.Activations()
			resp.Coalesced = c.Coalesced()
		}
		writeJSON(w, http.StatusOK, resp)
	})

	return r
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("statusapi: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
