package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/hazyhaar/pica/handoff"
)

// Webhook POSTs JSON to a URL, retrying network errors, 408, 429 and 5xx
// with exponential backoff. Other statuses fail at once.
type Webhook struct {
	url        string
	client     *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// WebhookOption configures a Webhook sink.
type WebhookOption func(*Webhook)

// WithWebhookRetries sets the maximum number of retries. Default: 3.
func WithWebhookRetries(n int) WebhookOption {
	return func(w *Webhook) { w.maxRetries = n }
}

// WithWebhookBackoff sets the first retry delay. Default: 1s.
func WithWebhookBackoff(d time.Duration) WebhookOption {
	return func(w *Webhook) { w.backoff = d }
}

// WithWebhookLogger sets a custom logger.
func WithWebhookLogger(l *slog.Logger) WebhookOption {
	return func(w *Webhook) { w.logger = l }
}

// NewWebhook creates a Webhook sink targeting the given URL.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:        url,
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		backoff:    time.Second,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Webhook) Send(ctx context.Context, req handoff.Request) error {
	body, err := json.Marshal(envelope{Type: "handoff", Data: req})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	attempt := 0
	post := func() (struct{}, error) {
		attempt++
		hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("webhook: new request: %w", err))
		}
		hreq.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(hreq)
		if err != nil {
			w.logger.Warn("sink: webhook request failed", "attempt", attempt, "error", err)
			return struct{}{}, err
		}
		resp.Body.Close()

		switch code := resp.StatusCode; {
		case code >= 200 && code < 300:
			return struct{}{}, nil
		case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests, code >= 500:
			w.logger.Warn("sink: webhook bad status", "attempt", attempt, "status", code)
			return struct{}{}, fmt.Errorf("webhook: status %d", code)
		default:
			return struct{}{}, backoff.Permanent(fmt.Errorf("webhook: status %d", code))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = w.backoff
	bo.MaxInterval = 30 * w.backoff

	_, err = backoff.Retry(ctx, post,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(w.maxRetries+1)))
	if err != nil {
		return fmt.Errorf("webhook: after %d attempts: %w", attempt, err)
	}
	return nil
}

func (w *Webhook) Close() error { return nil }
