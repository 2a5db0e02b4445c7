package ingest

import (
	"net/url"
	"strings"
)

var youtubeHosts = map[string]bool{
	"youtube.com":    true,
	"www.youtube.com": true,
	"m.youtube.com":  true,
}

// ParseYouTubeVideoID extracts the video ID from the handful of URL
// shapes this system accepts: youtu.be/<id>, youtube.com/?v=<id>,
// m.youtube.com/?v=<id>, www.youtube.com/?v=<id>.
func ParseYouTubeVideoID(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Host)

	if host == "youtu.be" {
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return "", false
		}
		return id, true
	}

	if youtubeHosts[host] {
		id := u.Query().Get("v")
		if id == "" {
			return "", false
		}
		return id, true
	}

	return "", false
}
