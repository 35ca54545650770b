package pagehost

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/pica/overlay"
)

// teardownMessages are CDP error fragments meaning the page context the
// overlay was built in no longer exists.
var teardownMessages = []string{
	"Cannot find context with specified id",
	"Execution context was destroyed",
	"Could not find object with given id",
	"Session with given id not found",
	"Target closed",
	"No target with given id found",
	"Inspected target navigated or closed",
}

// classify wraps page teardown errors with overlay.ErrContextInvalidated.
// Other errors are returned unchanged.
func classify(err error) error {
	if err == nil || errors.Is(err, overlay.ErrContextInvalidated) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", overlay.ErrContextInvalidated, err)
	}
	msg := err.Error()
	for _, m := range teardownMessages {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %w", overlay.ErrContextInvalidated, err)
		}
	}
	return err
}
