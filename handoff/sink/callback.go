package sink

import (
	"context"

	"github.com/hazyhaar/pica/handoff"
)

// Callback hands requests to a Go function, for a downloader living in
// the same binary.
type Callback func(ctx context.Context, req handoff.Request) error

func (f Callback) Send(ctx context.Context, req handoff.Request) error {
	if f == nil {
		return nil
	}
	return f(ctx, req)
}

func (Callback) Close() error { return nil }
