// CLAUDE:SUMMARY Host-facing interfaces (document, location, liveness, notifications, clipboard, icons) the overlay state machine runs against.
package overlay

import (
	"context"
	"errors"
)

// ErrContextInvalidated marks a failure caused by the hosting page context
// being torn down. Hosts wrap their teardown errors with it; the overlay
// then abandons all further work without reporting anything.
var ErrContextInvalidated = errors.New("overlay: context invalidated")

// Document is the slice of the host DOM the overlay needs. Lookups return
// a nil Element and a nil error when nothing matches.
type Document interface {
	QuerySelector(selector string) (Element, error)
	ElementByID(id string) (Element, error)
	CreateElement(tag string) (Element, error)
}

// Element is a live or detached node of the host document.
type Element interface {
	SetAttribute(name, value string) error
	SetText(text string) error
	AppendChild(child Element) error
	// Remove detaches the element. Removing a detached element is a no-op.
	Remove() error
	// ComputedPosition reports the CSS position currently in effect.
	ComputedPosition() (string, error)
	SetStyle(property, value string) error
	// OnActivate registers fn for primary activation (click) of the element.
	OnActivate(fn func(Event)) error
}

// Event is the activation event handed to OnActivate callbacks.
type Event interface {
	StopPropagation()
	PreventDefault()
}

// Location reads the current navigable location of the page.
type Location interface {
	Href() (string, error)
}

// Liveness reports whether the hosting context can still be used.
type Liveness interface {
	Alive() bool
}

// LivenessFunc adapts a function to Liveness.
type LivenessFunc func() bool

func (f LivenessFunc) Alive() bool { return f() }

// NotificationSource delivers "DOM changed" notifications. Subscribe returns
// a function that cancels the subscription.
type NotificationSource interface {
	Subscribe(fn func()) (unsubscribe func())
}

// ClipboardSink receives the hand-off payload. Failures are never surfaced
// to the user.
type ClipboardSink interface {
	WriteText(ctx context.Context, text string) error
}

// ResourceResolver turns a packaged resource path into a URL usable as an
// image source.
type ResourceResolver interface {
	ResolveURL(path string) (string, error)
}
