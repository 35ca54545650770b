// CLAUDE:SUMMARY Implements the overlay host interfaces (document, element, location, liveness, notifications) over a rod page.
package pagehost

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/pica/internal/idgen"
	"github.com/hazyhaar/pica/overlay"
)

// Host is one activation's view of the page. Every method runs on the
// session loop goroutine.
type Host struct {
	page       *rod.Page
	ctx        context.Context
	activation string

	handlerID idgen.Generator
	handlers  map[string]func(overlay.Event)
	subs      []func()
}

func newHost(ctx context.Context, page *rod.Page, activation string) *Host {
	return &Host{
		page:       page.Context(ctx),
		ctx:        ctx,
		activation: activation,
		handlerID:  idgen.Sequence("h"),
		handlers:   make(map[string]func(overlay.Event)),
	}
}

// Alive reports whether the page still runs the bridge injected for this
// activation. A reload or a second activation makes it false for good.
func (h *Host) Alive() bool {
	if h.ctx.Err() != nil {
		return false
	}
	res, err := h.page.Eval(`(id) => !!window.__pica && window.__pica.id === id`, h.activation)
	return err == nil && res.Value.Bool()
}

func (h *Host) Href() (string, error) {
	res, err := h.page.Eval(`() => location.href`)
	if err != nil {
		return "", classify(err)
	}
	return res.Value.Str(), nil
}

func (h *Host) QuerySelector(selector string) (overlay.Element, error) {
	els, err := h.page.Elements(selector)
	if err != nil {
		return nil, classify(err)
	}
	if len(els) == 0 {
		return nil, nil
	}
	return &element{host: h, el: els[0]}, nil
}

func (h *Host) ElementByID(id string) (overlay.Element, error) {
	return h.object(`(id) => document.getElementById(id)`, id)
}

// CreateElement starts a build. Handlers of elements that have left the
// document are dropped first: no listener of the new build exists yet.
func (h *Host) CreateElement(tag string) (overlay.Element, error) {
	if len(h.handlers) > 0 {
		if err := h.sweep(); err != nil {
			return nil, err
		}
	}
	return h.object(`(tag) => document.createElement(tag)`, tag)
}

func (h *Host) sweep() error {
	res, err := h.page.Eval(`() => window.__pica.sweep()`)
	if err != nil {
		return classify(err)
	}
	ids := make([]string, 0, len(res.Value.Arr()))
	for _, v := range res.Value.Arr() {
		ids = append(ids, v.Str())
	}
	h.forget(ids)
	return nil
}

func (h *Host) forget(ids []string) {
	for _, id := range ids {
		delete(h.handlers, id)
	}
}

// object evaluates js to a remote node. A null result is a nil Element.
func (h *Host) object(js string, args ...any) (overlay.Element, error) {
	obj, err := h.page.Evaluate(rod.Eval(js, args...).ByObject())
	if err != nil {
		return nil, classify(err)
	}
	if obj.ObjectID == "" {
		return nil, nil
	}
	el, err := h.page.ElementFromObject(obj)
	if err != nil {
		return nil, classify(err)
	}
	return &element{host: h, el: el}, nil
}

// Subscribe registers fn for DOM change notifications of this activation.
func (h *Host) Subscribe(fn func()) func() {
	h.subs = append(h.subs, fn)
	i := len(h.subs) - 1
	return func() { h.subs[i] = nil }
}

func (h *Host) notify() {
	for _, fn := range h.subs {
		if fn != nil {
			fn()
		}
	}
}

// dispatch runs the handler registered under id. Unknown ids come from
// listeners of an earlier build and are ignored.
func (h *Host) dispatch(id string) bool {
	fn, ok := h.handlers[id]
	if !ok {
		return false
	}
	fn(pageEvent{})
	return true
}

// pageEvent is handed to activation callbacks. The bridge listener has
// already stopped propagation and prevented the default action in the
// page, so both methods are no-ops here.
type pageEvent struct{}

func (pageEvent) StopPropagation() {}
func (pageEvent) PreventDefault()  {}

type element struct {
	host *Host
	el   *rod.Element
}

func (e *element) call(js string, args ...any) (*proto.RuntimeRemoteObject, error) {
	res, err := e.el.Eval(js, args...)
	if err != nil {
		return nil, classify(err)
	}
	return res, nil
}

func (e *element) SetAttribute(name, value string) error {
	_, err := e.call(`function (n, v) { this.setAttribute(n, v) }`, name, value)
	return err
}

func (e *element) SetText(text string) error {
	_, err := e.call(`function (t) { this.textContent = t }`, text)
	return err
}

func (e *element) AppendChild(child overlay.Element) error {
	c, ok := child.(*element)
	if !ok {
		return fmt.Errorf("pagehost: foreign element %T", child)
	}
	_, err := e.call(`function (c) { this.appendChild(c) }`, c.el.Object)
	return err
}

func (e *element) Remove() error {
	_, err := e.call(`function () { this.remove() }`)
	return err
}

func (e *element) ComputedPosition() (string, error) {
	res, err := e.call(`function () { return getComputedStyle(this).position }`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *element) SetStyle(property, value string) error {
	_, err := e.call(`function (p, v) { this.style.setProperty(p, v) }`, property, value)
	return err
}

func (e *element) OnActivate(fn func(overlay.Event)) error {
	id := e.host.handlerID()
	if _, err := e.call(`function (h) { window.__pica.listen(this, h) }`, id); err != nil {
		return err
	}
	e.host.handlers[id] = fn
	return nil
}
