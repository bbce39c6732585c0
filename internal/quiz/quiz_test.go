package quiz

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
)

func newTestSource(t *testing.T) *kodekloud.Client {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/quizzes/all", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"_id": {"$oid": "q1"}, "name": "Docker", "questions": {"1": "d2", "0": "d1", "2": "broken"}},
			{"_id": {"$oid": "q2"}, "name": "", "topic": "Kubernetes", "questions": {"0": "k1"}}
		]`)
	})
	mux.HandleFunc("/api/questions/question", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		code := ""
		if id == "d2" {
			code = `"code": {"script": "docker run nginx"},`
		}
		fmt.Fprintf(w, `{"_id": {"$oid": %q}, %s "question": " Question %s? ",
			"answers": ["yes %s", "no %s"], "correctAnswers": ["yes %s"],
			"explanation": "because %s", "documentationLink": "https://docs.example/%s"}`,
			id, code, id, id, id, id, id, id)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := kodekloud.NewClient(nil, "")
	c.HTTPClient.SetRetryCount(0)
	c.QuizBaseURL = srv.URL
	return c
}

func TestCollect(t *testing.T) {
	c := &Collector{Source: newTestSource(t), Concurrency: 2}
	quizzes, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, quizzes, 2)

	docker := quizzes[0]
	require.Len(t, docker.Questions, 2, "the failing question is left out")
	assert.Equal(t, "d1", docker.Questions[0].ID)
	assert.Equal(t, "d2", docker.Questions[1].ID)
	assert.Equal(t, "docker run nginx", docker.Questions[1].Code)
	assert.Equal(t, "Kubernetes", quizzes[1].Quiz.DisplayName())
}

func TestWriteSeparateFiles(t *testing.T) {
	c := &Collector{Source: newTestSource(t)}
	quizzes, err := c.Collect(context.Background())
	require.NoError(t, err)

	dir := t.TempDir()
	paths, err := Write(dir, quizzes, true)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "Docker.md"), filepath.Join(dir, "Kubernetes.md")}, paths)

	b, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	docker := string(b)
	assert.True(t, strings.HasPrefix(docker, "## Docker\n"))
	assert.Contains(t, docker, "**1. Question d1?**")
	assert.Contains(t, docker, "* [ ] yes d1\n* [ ] no d1\n")
	assert.Contains(t, docker, "**Correct answer:**\n* [x] yes d1\n")
	assert.Contains(t, docker, "```\ndocker run nginx\n```")
	assert.Contains(t, docker, "**Explanation**: because d2")
	assert.Contains(t, docker, "**Documentation Link**: https://docs.example/d2")
	assert.NotContains(t, docker, "k1")

	b, err = os.ReadFile(paths[1])
	require.NoError(t, err)
	k8s := string(b)
	assert.True(t, strings.HasPrefix(k8s, "## Kubernetes\n"))
	assert.Contains(t, k8s, "* [x] yes k1")
	assert.NotContains(t, k8s, "d1")
}

func TestWriteCombined(t *testing.T) {
	quizzes := []QuizWithQuestions{
		{Quiz: kodekloud.Quiz{ID: "a", Name: "Linux"}},
		{Quiz: kodekloud.Quiz{ID: "b", Name: "Git"}},
	}
	dir := t.TempDir()
	paths, err := Write(dir, quizzes, false)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, CombinedFileName)}, paths)

	b, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	want := "# KodeKloud Quiz\n\n## Linux\n\n---\n\n## Git\n"
	if string(b) != want {
		t.Fatalf("want %q, but got %q", want, string(b))
	}
}

func TestWriteSameNames(t *testing.T) {
	quizzes := []QuizWithQuestions{
		{Quiz: kodekloud.Quiz{ID: "a", Name: "Docker"}},
		{Quiz: kodekloud.Quiz{ID: "b", Name: "docker"}},
	}
	paths, err := Write(t.TempDir(), quizzes, true)
	require.NoError(t, err)
	assert.Equal(t, "Docker.md", filepath.Base(paths[0]))
	assert.Equal(t, "docker (2).md", filepath.Base(paths[1]))
}
