package memdom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/hazyhaar/pica/overlay"
)

// Element wraps one node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string { return e.node.Data }

// Attr returns the value of attribute name, or "".
func (e *Element) Attr(name string) string { return getAttr(e.node, name) }

// Text returns the concatenated text content of the element.
func (e *Element) Text() string {
	var sb strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return sb.String()
}

// Attached reports whether the element is part of the document tree.
func (e *Element) Attached() bool {
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

// Parent returns the parent element, or nil.
func (e *Element) Parent() *Element {
	if e.node.Parent == nil || e.node.Parent.Type != html.ElementNode {
		return nil
	}
	return &Element{doc: e.doc, node: e.node.Parent}
}

// Style returns the inline value of a CSS property, or "".
func (e *Element) Style(property string) string {
	for _, d := range parseStyle(getAttr(e.node, "style")) {
		if d[0] == property {
			return d[1]
		}
	}
	return ""
}

func (e *Element) SetAttribute(name, value string) error {
	e.doc.mutations++
	setAttr(e.node, name, value)
	return nil
}

func (e *Element) SetText(text string) error {
	e.doc.mutations++
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return nil
}

func (e *Element) AppendChild(child overlay.Element) error {
	c, ok := child.(*Element)
	if !ok || c.doc != e.doc {
		return fmt.Errorf("memdom: foreign element %T", child)
	}
	e.doc.mutations++
	if c.node.Parent != nil {
		c.node.Parent.RemoveChild(c.node)
	}
	e.node.AppendChild(c.node)
	return nil
}

func (e *Element) Remove() error {
	if e.node.Parent == nil {
		return nil
	}
	e.doc.mutations++
	e.node.Parent.RemoveChild(e.node)
	return nil
}

// ComputedPosition reads the inline position. Without one the element is
// static, as with no stylesheet applied.
func (e *Element) ComputedPosition() (string, error) {
	if pos := e.Style("position"); pos != "" {
		return pos, nil
	}
	return "static", nil
}

func (e *Element) SetStyle(property, value string) error {
	e.doc.mutations++
	decls := parseStyle(getAttr(e.node, "style"))
	found := false
	for i := range decls {
		if decls[i][0] == property {
			decls[i][1] = value
			found = true
		}
	}
	if !found {
		decls = append(decls, [2]string{property, value})
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d[0] + ": " + d[1]
	}
	setAttr(e.node, "style", strings.Join(parts, "; "))
	return nil
}

func (e *Element) OnActivate(fn func(overlay.Event)) error {
	e.doc.listeners[e.node] = append(e.doc.listeners[e.node], fn)
	return nil
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// parseStyle splits an inline style attribute into ordered declarations.
func parseStyle(s string) [][2]string {
	var decls [][2]string
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		decls = append(decls, [2]string{k, strings.TrimSpace(v)})
	}
	return decls
}
