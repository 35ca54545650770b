// CLAUDE:SUMMARY Intercepts and blocks configured resource types on the overlay tab, never the player's own media.
package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// applyResourceBlocking hijacks requests on page and fails those whose
// type is listed in types (images, fonts, stylesheets). Media and
// scripts always go through: the player needs both.
func applyResourceBlocking(page *rod.Page, types []string) {
	blockSet := blockSetOf(types)
	if len(blockSet) == 0 {
		return
	}

	router := page.HijackRequests()
	router.MustAdd("*", func(h *rod.Hijack) {
		if blocked(blockSet, string(h.Request.Type())) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
}

func blockSetOf(types []string) map[string]bool {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		switch t = strings.ToLower(strings.TrimSpace(t)); t {
		case "media", "script", "scripts", "":
		default:
			set[t] = true
		}
	}
	return set
}

func blocked(blockSet map[string]bool, resType string) bool {
	switch lower := strings.ToLower(resType); lower {
	case "image":
		return blockSet["images"]
	case "font":
		return blockSet["fonts"]
	case "stylesheet":
		return blockSet["stylesheets"]
	default:
		return blockSet[lower]
	}
}
