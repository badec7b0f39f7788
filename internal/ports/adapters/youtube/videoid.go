package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/forPelevin/heatclip/internal/ports"
)

// videoIDRe matches the 11-character ID YouTube assigns to every video.
var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoID extracts the video ID from a youtu.be link, a /watch?v= link or a
// /shorts/ link.
func VideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ports.ErrInvalidSource, raw)
	}

	var id string
	switch strings.ToLower(u.Hostname()) {
	case "youtu.be", "www.youtu.be":
		id = strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.SplitN(strings.TrimPrefix(u.Path, "/shorts/"), "/", 2)[0]
		}
	}
	if !videoIDRe.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ports.ErrInvalidSource, raw)
	}
	return id, nil
}

// ShortURL is the canonical link handed to the download tool.
func ShortURL(id string) string {
	return "https://youtu.be/" + id
}
