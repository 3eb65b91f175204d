package feed

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"mvdan.cc/xurls/v2"
)

const canonicalHost = "reddit.com"

var httpsURLRe = sync.OnceValues(func() (*regexp.Regexp, error) {
	return xurls.StrictMatchingScheme("https://")
})

// PostCanonicalURL turns a permalink or any reddit.com post URL into
// https://reddit.com/<path>, without query or fragment. It returns "" for
// anything that is not a post on a Reddit host.
func PostCanonicalURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}

	if u.Host != "" && !isRedditHost(u.Host) {
		return ""
	}
	if u.Host == "" && !strings.HasPrefix(u.Path, "/") {
		return ""
	}

	if !strings.Contains(u.Path, "/comments/") {
		return ""
	}

	path := u.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}

	return "https://" + canonicalHost + path
}

func isRedditHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}

	return host == canonicalHost || strings.HasSuffix(host, "."+canonicalHost)
}

func isValidPostURL(raw string) bool {
	re, err := httpsURLRe()
	if err != nil {
		return false
	}

	return re.FindString(raw) == raw
}

// hotPath returns the listing path for subreddit, or the front page when the
// name is empty.
func hotPath(subreddit string) string {
	subreddit = strings.TrimSpace(subreddit)
	if subreddit == "" {
		return "/hot"
	}

	return "/r/" + url.PathEscape(subreddit) + "/hot"
}

// userAgentTransport sets the User-Agent Reddit requires on every request,
// including token requests made by the oauth2 package.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	return base.RoundTrip(clone)
}
