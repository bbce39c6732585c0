package markdown

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLesson(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/img/pods.png" {
			_, _ = w.Write([]byte("png"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "01-Pods.md")
	html := `<h2>Pods</h2><p>A pod <strong>wraps</strong> containers.</p>` +
		`<p><img src="` + server.URL + `/img/pods.png" alt="pods"></p>` +
		`<p><img src="` + server.URL + `/img/missing.png" alt="gone"></p>`

	n, err := NewWriter(nil, 2).WriteLesson(context.Background(), html, "Pods", dest)
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, "# Pods\n")
	assert.Contains(t, s, "**wraps**")
	assert.Contains(t, s, "images/01-Pods/pods.png")
	assert.Contains(t, s, server.URL+"/img/missing.png")
	assert.FileExists(t, filepath.Join(dir, "images", "01-Pods", "pods.png"))
}

func TestWriteLessonImagesWithSameName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bytes of " + r.URL.Path))
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "01-Notes.md")
	html := `<p><img src="` + server.URL + `/a/diagram.png" alt="a"></p>` +
		`<p><img src="` + server.URL + `/b/diagram.png" alt="b"></p>`

	_, err := NewWriter(nil, 2).WriteLesson(context.Background(), html, "Notes", dest)
	require.NoError(t, err)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(b), "![a](images/01-Notes/diagram.png)")
	assert.Contains(t, string(b), "![b](images/01-Notes/diagram%20%282%29.png)")

	first, err := os.ReadFile(filepath.Join(dir, "images", "01-Notes", "diagram.png"))
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(dir, "images", "01-Notes", "diagram (2).png"))
	require.NoError(t, err)
	assert.Equal(t, "bytes of /a/diagram.png", string(first))
	assert.Equal(t, "bytes of /b/diagram.png", string(second))
}

func TestWriteLabPlaceholder(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "03-Lab.md")
	_, err := WriteLabPlaceholder("Lab: Pods", "https://learn.kodekloud.com/labs/pods", dest)
	require.NoError(t, err)

	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(b), "# Lab: Pods")
	assert.Contains(t, string(b), "<https://learn.kodekloud.com/labs/pods>")
}

func TestFindAllImages(t *testing.T) {
	got := findAllImages("![a](x.png) text ![b](y.png) ![a](x.png)")
	assert.Equal(t, []string{"x.png", "y.png"}, got)
}
