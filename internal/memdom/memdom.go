// CLAUDE:SUMMARY In-memory overlay.Document over x/net/html trees with selector lookup, click dispatch and a manual notification source.
// Package memdom is an in-memory document implementing the overlay host
// interfaces on top of golang.org/x/net/html node trees. It exists so the
// overlay state machine can be driven by synthetic notifications and
// clicks without a browser.
package memdom

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/pica/overlay"
)

// Document is a parsed HTML document. It is not safe for concurrent use.
type Document struct {
	root      *html.Node
	listeners map[*html.Node][]func(overlay.Event)
	mutations int
}

// Parse builds a Document from HTML source.
func Parse(src string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("memdom: parse: %w", err)
	}
	return &Document{
		root:      root,
		listeners: make(map[*html.Node][]func(overlay.Event)),
	}, nil
}

// MustParse is Parse for fixed test fixtures. It panics on error.
func MustParse(src string) *Document {
	d, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return d
}

// QuerySelector returns the first attached element matching sel.
func (d *Document) QuerySelector(sel string) (overlay.Element, error) {
	s, err := parseSelector(sel)
	if err != nil {
		return nil, err
	}
	n := findFirst(d.root, s)
	if n == nil {
		return nil, nil
	}
	return &Element{doc: d, node: n}, nil
}

// ElementByID returns the attached element with the given id.
func (d *Document) ElementByID(id string) (overlay.Element, error) {
	n := findFirst(d.root, selector{id: id})
	if n == nil {
		return nil, nil
	}
	return &Element{doc: d, node: n}, nil
}

// CreateElement returns a new detached element.
func (d *Document) CreateElement(tag string) (overlay.Element, error) {
	d.mutations++
	tag = strings.ToLower(tag)
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return &Element{doc: d, node: n}, nil
}

// Count returns the number of attached elements matching sel.
func (d *Document) Count(sel string) int {
	s, err := parseSelector(sel)
	if err != nil {
		return 0
	}
	count := 0
	walk(d.root, func(n *html.Node) bool {
		if s.matches(n) {
			count++
		}
		return true
	})
	return count
}

// Mutations returns how many mutating calls the document has received.
func (d *Document) Mutations() int { return d.mutations }

// Find returns the first attached element matching sel, or nil.
func (d *Document) Find(sel string) *Element {
	el, err := d.QuerySelector(sel)
	if err != nil || el == nil {
		return nil
	}
	return el.(*Element)
}

// Click dispatches an activation on the first element matching sel and
// bubbles it up the ancestors until propagation is stopped. It returns
// nil when nothing matches.
func (d *Document) Click(sel string) *Event {
	el := d.Find(sel)
	if el == nil {
		return nil
	}
	ev := &Event{}
	for n := el.node; n != nil; n = n.Parent {
		for _, fn := range d.listeners[n] {
			fn(ev)
		}
		if ev.Stopped {
			break
		}
	}
	return ev
}

// Render serialises the document.
func (d *Document) Render() string {
	var sb strings.Builder
	if err := html.Render(&sb, d.root); err != nil {
		return ""
	}
	return sb.String()
}

// Event records what an activation handler did with it.
type Event struct {
	Stopped   bool
	Prevented bool
}

func (e *Event) StopPropagation() { e.Stopped = true }
func (e *Event) PreventDefault()  { e.Prevented = true }

// Location is a settable page location.
type Location struct {
	mu   sync.Mutex
	href string
	err  error
}

// NewLocation returns a Location pointing at href.
func NewLocation(href string) *Location { return &Location{href: href} }

// Set navigates to href.
func (l *Location) Set(href string) {
	l.mu.Lock()
	l.href = href
	l.mu.Unlock()
}

// Fail makes subsequent Href calls return err (nil clears it).
func (l *Location) Fail(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *Location) Href() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", l.err
	}
	return l.href, nil
}

// Notifier is a NotificationSource fired by hand.
type Notifier struct {
	subs   map[int]func()
	nextID int
}

// NewNotifier returns a Notifier with no subscribers.
func NewNotifier() *Notifier { return &Notifier{subs: make(map[int]func())} }

func (n *Notifier) Subscribe(fn func()) func() {
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	return func() { delete(n.subs, id) }
}

// Fire delivers one notification to every subscriber.
func (n *Notifier) Fire() {
	for id := 0; id < n.nextID; id++ {
		if fn, ok := n.subs[id]; ok {
			fn()
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (n *Notifier) Subscribers() int { return len(n.subs) }
