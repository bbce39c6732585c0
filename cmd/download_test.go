package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoxiang/kodekloud-downloader/internal/config"
	"github.com/nicoxiang/kodekloud-downloader/internal/course"
	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/downloader"
)

type fakeWalker struct {
	errs   map[string]error
	walked []string
}

func (f *fakeWalker) Walk(ctx context.Context, c kodekloud.Course) (course.WalkResult, error) {
	f.walked = append(f.walked, c.Slug)
	res := course.WalkResult{Course: c.Title}
	if err := f.errs[c.Slug]; err != nil {
		return res, err
	}
	res.Written = c.LessonCount()
	return res, nil
}

func newTestDownloader(loadErrs map[string]error, w *fakeWalker) *courseDownloader {
	return &courseDownloader{
		load: func(ctx context.Context, slug string) (kodekloud.Course, error) {
			if err := loadErrs[slug]; err != nil {
				return kodekloud.Course{}, err
			}
			return kodekloud.Course{ID: slug, Slug: slug, Title: "Course " + slug, Chapters: []kodekloud.Chapter{
				{Title: "c", Lessons: []kodekloud.Lesson{{ID: "1", Title: "l"}}},
			}}, nil
		},
		walker: w,
		out:    &bytes.Buffer{},
	}
}

func TestDownloadAllContinuesAfterFailedCourse(t *testing.T) {
	w := &fakeWalker{errs: map[string]error{
		"b": &downloader.WriteError{Path: "/out/b", Err: os.ErrPermission},
	}}
	d := newTestDownloader(map[string]error{
		"a": &kodekloud.FormatError{Kind: "course", ID: "a", Reason: "missing id or title"},
		"c": fmt.Errorf("/api/courses/c: %w", kodekloud.ErrNotFound),
	}, w)

	err := d.downloadAll(context.Background(), []string{"a", "b", "c", "d"})
	require.Error(t, err)
	var we *downloader.WriteError
	assert.ErrorAs(t, err, &we)
	assert.ErrorIs(t, err, kodekloud.ErrNotFound)

	assert.Equal(t, []string{"b", "d"}, w.walked)
	require.Len(t, d.results, 4)
	assert.Error(t, d.results[0].Fatal)
	assert.Error(t, d.results[1].Fatal)
	assert.Error(t, d.results[2].Fatal)
	assert.NoError(t, d.results[3].Fatal)
	assert.Equal(t, 1, d.results[3].Written)

	var out bytes.Buffer
	printSummary(&out, d.results)
	assert.Contains(t, out.String(), "a: written 0, already done 0, skipped 0, failed 0. Failed: ")
	assert.Contains(t, out.String(), "Course b: written 0, already done 0, skipped 0, failed 0. Failed: ")
	assert.Contains(t, out.String(), "Course d: written 1, already done 0, skipped 0, failed 0. Completed")
}

func TestDownloadAllStopsOnRunFatal(t *testing.T) {
	tests := []error{
		fmt.Errorf("course detail: %w", kodekloud.ErrAuthFailed),
		&config.ConfigError{Option: "cookie", Err: errors.New("expired")},
		context.Canceled,
	}
	for _, fatal := range tests {
		w := &fakeWalker{}
		d := newTestDownloader(map[string]error{"a": fatal}, w)
		err := d.downloadAll(context.Background(), []string{"a", "b"})
		assert.Equal(t, fatal, err)
		assert.Empty(t, w.walked)
		assert.Len(t, d.results, 1)
	}
}

func TestDownloadReportsCourseFailureToSession(t *testing.T) {
	w := &fakeWalker{errs: map[string]error{"a": &downloader.WriteError{Path: "/out/a", Err: os.ErrPermission}}}
	d := newTestDownloader(nil, w)
	assert.NoError(t, d.download(context.Background(), "a"))
	assert.NoError(t, d.download(context.Background(), "b"))
	assert.Equal(t, []string{"a", "b"}, w.walked)
}
