package handoff

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrNoTrigger means the text does not carry the trigger token.
	ErrNoTrigger = errors.New("handoff: no trigger token")
	// ErrNotVideo means the token was present but the rest is not a
	// supported video URL.
	ErrNotVideo = errors.New("handoff: not a video url")
)

const watchBase = "https://www.youtube.com/watch?v="

// acceptedPrefixes are the only URL forms handed to the downloader.
var acceptedPrefixes = []string{"https://www.youtube.com/", "https://youtu.be/"}

// Link is a validated video URL taken from a clipboard payload.
type Link struct {
	URL     string `json:"url"`
	VideoID string `json:"video_id,omitempty"`
}

// Parse extracts the video URL from a payload such as
// "https://www.youtube.com/watch?v=abc start_download". Short-form and
// youtu.be links are rewritten to the watch form.
func Parse(text, token string) (Link, error) {
	text = strings.TrimSpace(text)
	if token == "" || !strings.Contains(text, token) {
		return Link{}, ErrNoTrigger
	}
	raw := strings.TrimSpace(strings.ReplaceAll(text, token, ""))

	if !hasAcceptedPrefix(raw) {
		return Link{}, ErrNotVideo
	}

	if id := pathID(raw, "/shorts/"); id != "" {
		return Link{URL: watchBase + url.QueryEscape(id), VideoID: id}, nil
	}
	if id := pathID(raw, "youtu.be/"); id != "" {
		return Link{URL: watchBase + url.QueryEscape(id), VideoID: id}, nil
	}

	link := Link{URL: raw}
	if u, err := url.Parse(raw); err == nil {
		link.VideoID = u.Query().Get("v")
	}
	return link, nil
}

func hasAcceptedPrefix(s string) bool {
	for _, p := range acceptedPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// pathID returns the segment following marker, up to the query, fragment
// or next slash.
func pathID(raw, marker string) string {
	_, rest, ok := strings.Cut(raw, marker)
	if !ok {
		return ""
	}
	if i := strings.IndexAny(rest, "?#/"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
