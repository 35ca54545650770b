// Package sink defines output backends for accepted hand-off requests.
package sink

import (
	"context"

	"github.com/hazyhaar/pica/handoff"
)

// Sink delivers requests to one backend (stdout, webhook, journal,
// in-process callback).
type Sink interface {
	Send(ctx context.Context, req handoff.Request) error
	Close() error
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
