package youtube

import (
	"fmt"
	"net/url"
	"strings"
)

const defaultOrigin = "https://www.youtube.com"

var defaultHosts = hostSet{"www.youtube.com": {}, "youtube.com": {}, "m.youtube.com": {}}

// hostSet is a lower-cased set of host names without ports.
type hostSet map[string]struct{}

// newHostSet accepts bare hosts or origins such as "https://host:443/".
// An empty or blank list yields the YouTube hosts.
func newHostSet(hosts []string) hostSet {
	set := hostSet{}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if i := strings.Index(h, "://"); i >= 0 {
			h = h[i+3:]
		}
		h, _, _ = strings.Cut(strings.Trim(h, "/"), "/")
		h, _, _ = strings.Cut(h, ":")
		if h != "" {
			set[h] = struct{}{}
		}
	}
	if len(set) == 0 {
		return defaultHosts
	}
	return set
}

func (s hostSet) has(host string) bool {
	_, ok := s[strings.ToLower(host)]
	return ok
}

// parseOrigin turns the configured page source into the origin watch pages
// are fetched from. It must be bare https on an allowed host.
func parseOrigin(raw string, hosts []string) (*url.URL, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		raw = defaultOrigin
	}
	reject := func(reason string) error {
		return fmt.Errorf("invalid page base URL %q: %s", raw, reason)
	}

	u, err := url.Parse(raw)
	switch {
	case err != nil:
		return nil, fmt.Errorf("invalid page base URL: %w", err)
	case !u.IsAbs() || u.Host == "":
		return nil, reject("absolute URL with host is required")
	case u.User != nil:
		return nil, reject("userinfo is not allowed")
	case u.RawQuery != "" || u.Fragment != "" || u.ForceQuery:
		return nil, reject("query and fragment are not allowed")
	case !strings.EqualFold(u.Scheme, "https"):
		return nil, reject("https is required")
	case !newHostSet(hosts).has(u.Hostname()):
		return nil, reject(fmt.Sprintf("host %q is not allowed", strings.ToLower(u.Hostname())))
	}
	return u, nil
}

// ValidateBaseURL reports whether raw is usable as the watch page origin.
func ValidateBaseURL(raw string, allowedHosts []string) error {
	_, err := parseOrigin(raw, allowedHosts)
	return err
}
