package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoxiang/kodekloud-downloader/internal/content"
	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
)

func newTestResolver(t *testing.T, h http.Handler) *Resolver {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	r := NewResolver(nil)
	r.HTTPClient.SetRetryCount(0)
	r.PlayerBaseURL = srv.URL
	return r
}

func playerConfig(qualities ...string) string {
	var files string
	for i, q := range qualities {
		if i > 0 {
			files += ","
		}
		files += fmt.Sprintf(`{"quality": %q, "url": "https://cdn.test/%s.mp4?sig=x", "mime": "video/mp4"}`, q, q)
	}
	return fmt.Sprintf(`{"request": {"files": {"progressive": [%s]}}, "video": {"id": 123, "title": "t"}}`, files)
}

func TestResolve_VimeoFallback(t *testing.T) {
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/video/123/config", req.URL.Path)
		assert.Equal(t, "abc", req.URL.Query().Get("h"))
		assert.Equal(t, kodekloud.DefaultReferer, req.Header.Get("Referer"))
		fmt.Fprint(w, playerConfig("360p", "144p"))
	}))

	var buf bytes.Buffer
	require.NoError(t, logger.Init(&buf, "info", 0))
	defer func() { _ = logger.Init(os.Stderr, "info", 0) }()

	lesson := kodekloud.Lesson{ID: "1", Title: "Pods", Type: kodekloud.LessonTypeVideo, VideoURL: "https://player.vimeo.com/video/123?h=abc"}
	asset, err := r.Resolve(context.Background(), lesson, content.Classify(lesson), "1080p")
	require.NoError(t, err)
	assert.Equal(t, "360p", asset.Quality)
	assert.True(t, asset.Fallback)
	assert.Equal(t, "https://cdn.test/360p.mp4?sig=x", asset.URL)
	assert.Equal(t, ".mp4", asset.Extension)
	assert.Contains(t, buf.String(), "falling back to 360p")
}

func TestResolve_VimeoNoRenditions(t *testing.T) {
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, `{"request": {"files": {"progressive": []}}, "message": "private video"}`)
	}))
	lesson := kodekloud.Lesson{ID: "1", Type: kodekloud.LessonTypeVideo, VideoURL: "https://vimeo.com/123"}
	_, err := r.Resolve(context.Background(), lesson, content.Classify(lesson), "720p")
	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "private video")
}

func TestResolve_VimeoForbidden(t *testing.T) {
	r := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	lesson := kodekloud.Lesson{ID: "1", Type: kodekloud.LessonTypeVideo, VideoURL: "https://player.vimeo.com/video/9"}
	_, err := r.Resolve(context.Background(), lesson, content.Classify(lesson), "720p")
	assert.True(t, IsNotFound(err))
}

func TestResolve_VimeoUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	r := NewResolver(nil)
	r.HTTPClient.SetRetryCount(0)
	r.PlayerBaseURL = srv.URL
	srv.Close()

	lesson := kodekloud.Lesson{ID: "1", Type: kodekloud.LessonTypeVideo, VideoURL: "https://player.vimeo.com/video/9"}
	_, err := r.Resolve(context.Background(), lesson, content.Classify(lesson), "720p")
	var re *ResolutionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "1", re.LessonID)
	assert.NotNil(t, re.Err)
	assert.False(t, IsNotFound(err))
}

func TestResolve_VariantMap(t *testing.T) {
	r := NewResolver(nil)
	lesson := kodekloud.Lesson{ID: "2", Type: kodekloud.LessonTypeVideo, VideoURL: "https://cdn.test/master.mp4",
		Qualities: map[string]string{"720p": "https://cdn.test/720.mp4", "1080p": "https://cdn.test/1080.mp4"}}
	asset, err := r.Resolve(context.Background(), lesson, content.Classify(lesson), "1080p")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/1080.mp4", asset.URL)
	assert.False(t, asset.Fallback)
}

func TestResolve_DirectAndDocument(t *testing.T) {
	r := NewResolver(nil)
	video := kodekloud.Lesson{ID: "3", Type: kodekloud.LessonTypeVideo, VideoURL: "https://cdn.test/a.webm"}
	asset, err := r.Resolve(context.Background(), video, content.Classify(video), "720p")
	require.NoError(t, err)
	assert.Equal(t, ".webm", asset.Extension)

	doc := kodekloud.Lesson{ID: "4", Type: kodekloud.LessonTypeDocument, DocumentURL: "https://cdn.test/slides"}
	asset, err = r.Resolve(context.Background(), doc, content.Classify(doc), "720p")
	require.NoError(t, err)
	assert.Equal(t, content.Document, asset.Kind)
	assert.Equal(t, ".pdf", asset.Extension)
}

func TestResolve_NotDownloadable(t *testing.T) {
	r := NewResolver(nil)
	lab := kodekloud.Lesson{ID: "5", Type: kodekloud.LessonTypeLab}
	_, err := r.Resolve(context.Background(), lab, content.Classify(lab), "720p")
	assert.True(t, IsNotFound(err))
}

func TestVimeoID(t *testing.T) {
	id, hash, ok := vimeoID("https://player.vimeo.com/video/123456?h=ff00")
	assert.True(t, ok)
	assert.Equal(t, "123456", id)
	assert.Equal(t, "ff00", hash)

	id, hash, ok = vimeoID("https://vimeo.com/42/deadbeef")
	assert.True(t, ok)
	assert.Equal(t, "42", id)
	assert.Equal(t, "deadbeef", hash)

	_, _, ok = vimeoID("https://vimeo.com/channels/staffpicks")
	assert.False(t, ok)
	_, _, ok = vimeoID("https://cdn.test/123.mp4")
	assert.False(t, ok)
}
