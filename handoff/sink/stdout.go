// CLAUDE:SUMMARY Writes hand-off requests as JSON lines to an io.Writer (defaults to stdout).
package sink

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/hazyhaar/pica/handoff"
)

// Stdout writes JSON lines to an io.Writer (default os.Stdout).
type Stdout struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStdout creates a Stdout sink. If w is nil, os.Stdout is used.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{enc: json.NewEncoder(w)}
}

func (s *Stdout) Send(_ context.Context, req handoff.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(envelope{Type: "handoff", Data: req})
}

func (s *Stdout) Close() error { return nil }
