package pagehost

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-rod/rod/lib/cdp"

	"github.com/hazyhaar/pica/overlay"
)

func TestClassify(t *testing.T) {
	invalidated := []error{
		&cdp.Error{Code: -32000, Message: "Cannot find context with specified id"},
		&cdp.Error{Code: -32000, Message: "Execution context was destroyed."},
		fmt.Errorf("eval: %w", &cdp.Error{Code: -32001, Message: "Session with given id not found."}),
		context.Canceled,
		fmt.Errorf("wrapped: %w", context.DeadlineExceeded),
	}
	for _, err := range invalidated {
		got := classify(err)
		if !errors.Is(got, overlay.ErrContextInvalidated) {
			t.Errorf("classify(%v) not invalidated", err)
		}
		if !errors.Is(got, err) {
			t.Errorf("classify(%v) lost the cause", err)
		}
	}

	other := &cdp.Error{Code: -32602, Message: "Invalid parameters"}
	if got := classify(other); got != other {
		t.Errorf("classify(%v) = %v", other, got)
	}
	if classify(nil) != nil {
		t.Error("classify(nil) != nil")
	}
}

func TestStyleSheet_ScopedToContainer(t *testing.T) {
	css := styleSheet("pica-overlay-container")
	if want := "#pica-overlay-container .pica-close-btn"; !strings.Contains(css, want) {
		t.Errorf("stylesheet missing %q", want)
	}
	if got := cssIdent("a.b c"); got != `a\.b\ c` {
		t.Errorf("cssIdent = %q", got)
	}
}
