package memdom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// selector is a compound simple selector: tag, #id and .class parts only.
type selector struct {
	tag     string
	id      string
	classes []string
}

func parseSelector(s string) (selector, error) {
	var sel selector
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " >+~[]:,*") {
		return sel, fmt.Errorf("memdom: unsupported selector %q", s)
	}

	i := strings.IndexAny(s, "#.")
	if i < 0 {
		sel.tag = strings.ToLower(s)
		return sel, nil
	}
	sel.tag = strings.ToLower(s[:i])

	for rest := s[i:]; rest != ""; {
		kind := rest[0]
		rest = rest[1:]
		j := strings.IndexAny(rest, "#.")
		if j < 0 {
			j = len(rest)
		}
		name := rest[:j]
		rest = rest[j:]
		if name == "" {
			return sel, fmt.Errorf("memdom: unsupported selector %q", s)
		}
		if kind == '#' {
			sel.id = name
		} else {
			sel.classes = append(sel.classes, name)
		}
	}
	return sel, nil
}

func (s selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if s.tag != "" && n.Data != s.tag {
		return false
	}
	if s.id != "" && getAttr(n, "id") != s.id {
		return false
	}
	if len(s.classes) > 0 {
		have := strings.Fields(getAttr(n, "class"))
		for _, want := range s.classes {
			found := false
			for _, c := range have {
				if c == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func findFirst(root *html.Node, s selector) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if s.matches(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// walk visits n and its descendants in document order until fn returns
// false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
