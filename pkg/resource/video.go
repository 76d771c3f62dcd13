package resource

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/ethanbaker/docchat/pkg/errs"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoURL extracts the 11-character video id from a YouTube link. It
// accepts watch, embed, /v/ and youtu.be forms.
func ParseVideoURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errs.Validation("video URL required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", errs.Validation("invalid video URL")
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = firstSegment(u.Path)
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/embed/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/embed/"))
		case strings.HasPrefix(u.Path, "/v/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/v/"))
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", errs.Validation("not a YouTube video URL")
	}
	return id, nil
}

// EmbedURL returns the player URL for a video id
func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
