package kodekloud

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/cookie"
)

// ErrNoSessionToken ...
var ErrNoSessionToken = fmt.Errorf("cookie file has no %q cookie, log in to kodekloud and export cookies again", SessionCookieName)

// ErrInvalidCourseURL ...
var ErrInvalidCourseURL = errors.New("not a kodekloud course url")

// ParseCourseURL extracts the course slug from urls like
// https://learn.kodekloud.com/user/courses/<slug> or https://kodekloud.com/courses/<slug>
func ParseCourseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCourseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %s", ErrInvalidCourseURL, raw)
	}
	host := strings.ToLower(u.Hostname())
	if host != "kodekloud.com" && !strings.HasSuffix(host, ".kodekloud.com") {
		return "", fmt.Errorf("%w: %s", ErrInvalidCourseURL, raw)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, s := range segments {
		if s == "courses" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidCourseURL, raw)
}

// SessionToken returns the learn api bearer token carried in the cookies
func SessionToken(cs []*http.Cookie) (string, error) {
	v, ok := cookie.Find(cs, SessionCookieName)
	if !ok || v == "" {
		return "", ErrNoSessionToken
	}
	return v, nil
}
