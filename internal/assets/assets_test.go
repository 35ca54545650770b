package assets

import (
	"encoding/base64"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/hazyhaar/pica/overlay"
)

func TestResolveURL_DefaultIcon(t *testing.T) {
	u, err := New().ResolveURL(overlay.DefaultIconPath)
	if err != nil {
		t.Fatal(err)
	}
	const prefix = "data:image/svg+xml;base64,"
	if !strings.HasPrefix(u, prefix) {
		t.Fatalf("url = %.40q", u)
	}
	svg, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(u, prefix))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Fatalf("decoded icon is not an SVG: %.40q", svg)
	}
}

func TestResolveURL_Errors(t *testing.T) {
	r := NewFS(fstest.MapFS{"icons/x.weird": {Data: []byte("?")}})
	if _, err := r.ResolveURL("icons/missing.svg"); err == nil {
		t.Error("missing file resolved")
	}
	if _, err := r.ResolveURL("icons/x.weird"); err == nil {
		t.Error("unknown media type resolved")
	}
}

func TestResolveURL_Cached(t *testing.T) {
	fsys := fstest.MapFS{"a.png": {Data: []byte{0x89, 'P', 'N', 'G'}}}
	r := NewFS(fsys)
	first, err := r.ResolveURL("a.png")
	if err != nil {
		t.Fatal(err)
	}
	delete(fsys, "a.png")
	second, err := r.ResolveURL("a.png")
	if err != nil || second != first {
		t.Fatalf("second = %q, %v", second, err)
	}
}
