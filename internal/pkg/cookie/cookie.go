package cookie

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	httpOnlyPrefix = "#HttpOnly_"
	// netscape cookie file has exactly 7 tab separated fields
	fieldCount = 7
)

// ErrNoCookies is returned when a cookie file holds no usable line
var ErrNoCookies = errors.New("cookie file contains no cookies")

// ReadFile reads cookies from a Netscape cookies.txt file, the format
// exported by most browser cookie extensions.
func ReadFile(name string) ([]*http.Cookie, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads Netscape formatted cookies. Expired cookies are dropped.
func Parse(r io.Reader) ([]*http.Cookie, error) {
	var cookies []*http.Cookie
	now := time.Now()
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimRight(s.Text(), "\r")
		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			line = strings.TrimPrefix(line, httpOnlyPrefix)
			httpOnly = true
		}
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != fieldCount {
			return nil, fmt.Errorf("cookie file line %d: want %d tab separated fields, got %d", lineNo, fieldCount, len(fields))
		}
		c := &http.Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   strings.EqualFold(fields[3], "TRUE"),
			Name:     fields[5],
			Value:    fields[6],
			HttpOnly: httpOnly,
		}
		if expires, err := strconv.ParseInt(fields[4], 10, 64); err == nil && expires > 0 {
			c.Expires = time.Unix(expires, 0)
			if c.Expires.Before(now) {
				continue
			}
		}
		cookies = append(cookies, c)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, ErrNoCookies
	}
	return cookies, nil
}

// Find returns the value of the first cookie called name
func Find(cookies []*http.Cookie, name string) (string, bool) {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
