package session

import (
	"net/url"
	"strings"
)

const userParam = "user"

// profileName returns the escaped username segment of a "/<name>/profile"
// path.
func profileName(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[1] != "profile" || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}

// ResolveDeepLink extracts a login candidate from a launch link: either the
// user query parameter or a "/<name>/profile" path. The query parameter wins
// when both are present. It has no side effects.
func ResolveDeepLink(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	if name := strings.TrimSpace(u.Query().Get(userParam)); name != "" {
		return name, true
	}

	seg, ok := profileName(u.EscapedPath())
	if !ok {
		return "", false
	}
	name, err := url.PathUnescape(seg)
	if err != nil {
		return "", false
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

// StripDeepLink removes the login parts from a launch link: the user query
// parameter is dropped and a profile path collapses to "/".
func StripDeepLink(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	q := u.Query()
	if q.Has(userParam) {
		q.Del(userParam)
		u.RawQuery = q.Encode()
	}

	if _, ok := profileName(u.EscapedPath()); ok {
		u.Path = "/"
		u.RawPath = ""
	}
	return u.String()
}
