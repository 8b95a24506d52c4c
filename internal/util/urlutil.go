package util

import (
	"net/url"
	"regexp"
	"strings"

	"ytfetch/internal/errs"
	"ytfetch/internal/model"
)

var (
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	// Path prefixes on youtube.com that carry the id as the next segment.
	idPathPrefixes = []string{"/embed/", "/v/", "/shorts/", "/live/"}

	youtubeHosts = map[string]bool{
		"youtube.com":       true,
		"m.youtube.com":     true,
		"music.youtube.com": true,
	}
)

// ValidateURL checks raw against the accepted YouTube URL shapes and returns
// the canonical video id:
//   - youtube.com/watch?v=<id>
//   - youtu.be/<id>
//   - youtube.com/{embed,v,shorts,live}/<id>
//
// The scheme may be omitted. It never touches the network.
func ValidateURL(raw string) (model.VideoID, error) {
	invalid := func() (model.VideoID, error) {
		return "", &errs.Error{Kind: errs.KindInvalidURL, Stage: errs.StageValidate, Reason: raw}
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\n") {
		return invalid()
	}
	u, err := url.Parse(raw)
	if err == nil && u.Scheme == "" {
		u, err = url.Parse("https://" + raw)
	}
	if err != nil || u.Host == "" {
		return invalid()
	}
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		return invalid()
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	var id string
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case youtubeHosts[host]:
		id = idFromYouTubePath(u)
	default:
		return invalid()
	}

	if !videoIDPattern.MatchString(id) {
		return invalid()
	}
	return model.VideoID(id), nil
}

func idFromYouTubePath(u *url.URL) string {
	p := u.Path
	if p == "/watch" || p == "/watch/" {
		return u.Query().Get("v")
	}
	for _, prefix := range idPathPrefixes {
		if strings.HasPrefix(p, prefix) {
			rest := strings.TrimPrefix(p, prefix)
			rest = strings.TrimSuffix(rest, "/")
			if strings.Contains(rest, "/") {
				return ""
			}
			return rest
		}
	}
	return ""
}
