// Package assets packages the overlay icons and serves them as data URLs,
// so the overlay never depends on a server the page can reach.
package assets

import (
	"embed"
	"encoding/base64"
	"fmt"
	"io/fs"
	"mime"
	"path"
	"sync"
)

//go:embed icons
var embedded embed.FS

// Resolver turns resource paths into data URLs. Safe for concurrent use.
type Resolver struct {
	fsys  fs.FS
	mu    sync.Mutex
	cache map[string]string
}

// New returns a Resolver over the embedded icons.
func New() *Resolver { return NewFS(embedded) }

// NewFS returns a Resolver over fsys.
func NewFS(fsys fs.FS) *Resolver {
	return &Resolver{fsys: fsys, cache: make(map[string]string)}
}

// ResolveURL returns a data URL for the resource at p.
func (r *Resolver) ResolveURL(p string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.cache[p]; ok {
		return u, nil
	}

	mt := mime.TypeByExtension(path.Ext(p))
	if mt == "" {
		return "", fmt.Errorf("assets: unknown media type for %q", p)
	}
	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		return "", fmt.Errorf("assets: %w", err)
	}
	u := "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data)
	r.cache[p] = u
	return u, nil
}
