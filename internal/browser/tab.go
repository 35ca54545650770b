package browser

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Tab is a stealth page navigated to the watch page, with clipboard
// permissions granted for its origin.
type Tab struct {
	Page    *rod.Page
	PageURL string
	manager *Manager
}

// OpenTab creates a new tab, grants clipboard access for the page origin
// and navigates to pageURL.
func OpenTab(ctx context.Context, mgr *Manager, pageURL string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	if len(mgr.cfg.ResourceBlocking) > 0 {
		applyResourceBlocking(page, mgr.cfg.ResourceBlocking)
	}

	if origin := originOf(pageURL); origin != "" {
		err := proto.BrowserGrantPermissions{
			Permissions: []proto.BrowserPermissionType{
				proto.BrowserPermissionTypeClipboardReadWrite,
				proto.BrowserPermissionTypeClipboardSanitizedWrite,
			},
			Origin: origin,
		}.Call(b)
		if err != nil {
			mgr.cfg.Logger.Warn("browser: grant clipboard permission failed", "origin", origin, "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, mgr.cfg.NavigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		mgr.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{Page: page, PageURL: pageURL, manager: mgr}, nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
