package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nicoxiang/kodekloud-downloader/internal/content"
	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
	"github.com/nicoxiang/kodekloud-downloader/internal/video/vimeo"
)

const (
	// DefaultPlayerBaseURL ...
	DefaultPlayerBaseURL = "https://player.vimeo.com"
	// PlayerConfigPath returns signed renditions of one video
	PlayerConfigPath = "/video/%s/config"
	// MP4Extension ...
	MP4Extension = ".mp4"
	// PDFExtension ...
	PDFExtension = ".pdf"
)

// ResolutionError means a lesson has no usable url. The lesson is skipped.
type ResolutionError struct {
	LessonID string
	Reason   string
	Err      error
}

// Error implements error interface
func (e *ResolutionError) Error() string {
	s := fmt.Sprintf("resolve lesson %s", e.LessonID)
	if e.Reason != "" {
		s += ": " + e.Reason
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap ...
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ResolvedAsset is a short lived, fetchable url for one lesson. It must not
// be cached beyond the fetch it was resolved for.
type ResolvedAsset struct {
	URL       string
	Kind      content.Kind
	Extension string
	Quality   string
	Fallback  bool
	Headers   map[string]string
}

// Resolver turns classified lessons into fetchable urls
type Resolver struct {
	HTTPClient    *resty.Client
	PlayerBaseURL string
	Referer       string
}

// NewResolver returns a resolver that authenticates with the session cookies
func NewResolver(cs []*http.Cookie) *Resolver {
	httpClient := resty.New().
		SetCookies(cs).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetTimeout(30*time.Second).
		SetHeader(kodekloud.UserAgent, kodekloud.DefaultUserAgent).
		SetLogger(logger.RestyLogger{})
	return &Resolver{
		HTTPClient:    httpClient,
		PlayerBaseURL: DefaultPlayerBaseURL,
		Referer:       kodekloud.DefaultReferer,
	}
}

// Resolve obtains the final url of a downloadable lesson at quality,
// falling back per SelectQuality.
func (r *Resolver) Resolve(ctx context.Context, l kodekloud.Lesson, c content.Classification, quality string) (ResolvedAsset, error) {
	switch c.Kind {
	case content.Video:
		if id, hash, ok := vimeoID(c.URL); ok {
			return r.resolveVimeo(ctx, l, id, hash, quality)
		}
		if len(l.Qualities) > 0 {
			return r.resolveVariants(l, quality)
		}
		return ResolvedAsset{
			URL:       c.URL,
			Kind:      content.Video,
			Extension: content.Extension(c.URL, MP4Extension),
		}, nil
	case content.Document:
		return ResolvedAsset{
			URL:       c.URL,
			Kind:      content.Document,
			Extension: content.Extension(c.URL, PDFExtension),
			Headers:   map[string]string{kodekloud.Referer: r.Referer},
		}, nil
	}
	return ResolvedAsset{}, &ResolutionError{LessonID: l.ID, Reason: fmt.Sprintf("%s lessons are not fetched", c.Kind), Err: ErrNotFound}
}

func (r *Resolver) resolveVariants(l kodekloud.Lesson, quality string) (ResolvedAsset, error) {
	offered := make([]string, 0, len(l.Qualities))
	for q := range l.Qualities {
		offered = append(offered, q)
	}
	sel, err := SelectQuality(quality, offered)
	if err != nil {
		return ResolvedAsset{}, &ResolutionError{LessonID: l.ID, Err: err}
	}
	logSelection(l, sel)
	u := l.Qualities[sel.Quality]
	return ResolvedAsset{
		URL:       u,
		Kind:      content.Video,
		Extension: content.Extension(u, MP4Extension),
		Quality:   sel.Quality,
		Fallback:  sel.Fallback,
	}, nil
}

func (r *Resolver) resolveVimeo(ctx context.Context, l kodekloud.Lesson, id, hash, quality string) (ResolvedAsset, error) {
	req := r.HTTPClient.R().
		SetContext(ctx).
		SetHeader(kodekloud.Referer, r.Referer)
	if hash != "" {
		req.SetQueryParam("h", hash)
	}
	resp, err := req.Get(r.PlayerBaseURL + fmt.Sprintf(PlayerConfigPath, url.PathEscape(id)))
	if err != nil {
		return ResolvedAsset{}, &ResolutionError{LessonID: l.ID, Reason: "player config request for video " + id, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		logger.Warnf("Player config request end, lesson: %s, status code: %d", l.ID, resp.StatusCode())
		err := fmt.Errorf("player config status %d", resp.StatusCode())
		if resp.StatusCode() == http.StatusForbidden || resp.StatusCode() == http.StatusNotFound {
			err = fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return ResolvedAsset{}, &ResolutionError{LessonID: l.ID, Reason: "video " + id, Err: err}
	}

	var cfg vimeo.PlayerConfig
	if err := json.Unmarshal(resp.Body(), &cfg); err != nil {
		return ResolvedAsset{}, &kodekloud.FormatError{Kind: "player config", ID: id, Err: err}
	}
	byQuality := make(map[string]vimeo.Progressive, len(cfg.Request.Files.Progressive))
	offered := make([]string, 0, len(cfg.Request.Files.Progressive))
	for _, p := range cfg.Request.Files.Progressive {
		if p.URL == "" {
			continue
		}
		label := p.Quality
		if label == "" && p.Height > 0 {
			label = fmt.Sprintf("%dp", p.Height)
		}
		if _, dup := byQuality[label]; dup {
			continue
		}
		byQuality[label] = p
		offered = append(offered, label)
	}
	sel, err := SelectQuality(quality, offered)
	if err != nil {
		reason := "video " + id
		if cfg.Message != "" {
			reason += ": " + cfg.Message
		}
		return ResolvedAsset{}, &ResolutionError{LessonID: l.ID, Reason: reason, Err: err}
	}
	logSelection(l, sel)
	p := byQuality[sel.Quality]
	return ResolvedAsset{
		URL:       p.URL,
		Kind:      content.Video,
		Extension: MP4Extension,
		Quality:   sel.Quality,
		Fallback:  sel.Fallback,
		Headers:   map[string]string{kodekloud.Referer: r.Referer},
	}, nil
}

func logSelection(l kodekloud.Lesson, sel Selection) {
	if sel.Fallback {
		logger.WithField("lesson", l.Title).Warn(sel.Warning)
	}
}

// vimeoID extracts the video id and the unlisted hash from player or page urls:
// https://player.vimeo.com/video/123?h=abc, https://vimeo.com/123/abc
func vimeoID(raw string) (id, hash string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil || !strings.HasSuffix(strings.ToLower(u.Hostname()), "vimeo.com") {
		return "", "", false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) > 0 && segments[0] == "video" {
		segments = segments[1:]
	}
	if len(segments) == 0 || !isDigits(segments[0]) {
		return "", "", false
	}
	id = segments[0]
	hash = u.Query().Get("h")
	if hash == "" && len(segments) > 1 {
		hash = segments[1]
	}
	return id, hash, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsNotFound reports whether err means the lesson has nothing to fetch
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
