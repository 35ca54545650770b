package pagehost

import (
	"context"

	"github.com/go-rod/rod"
)

// PageClipboard writes through the page's async clipboard API. It needs
// the clipboard permission for the page origin and a focused document.
type PageClipboard struct {
	Page *rod.Page
}

func (c PageClipboard) WriteText(ctx context.Context, text string) error {
	_, err := c.Page.Context(ctx).Eval(`(t) => navigator.clipboard.writeText(t)`, text)
	return classify(err)
}
