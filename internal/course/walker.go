package course

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/nicoxiang/kodekloud-downloader/internal/content"
	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/ledger"
	"github.com/nicoxiang/kodekloud-downloader/internal/markdown"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/downloader"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/filenamify"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/files"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
	"github.com/nicoxiang/kodekloud-downloader/internal/video"
)

// LessonSource loads the payload of a lesson from the course tree
type LessonSource interface {
	LessonDetail(ctx context.Context, courseID, lessonID string) (kodekloud.Lesson, error)
}

// AssetResolver turns a classified lesson into a fetchable url
type AssetResolver interface {
	Resolve(ctx context.Context, l kodekloud.Lesson, c content.Classification, quality string) (video.ResolvedAsset, error)
}

// AssetFetcher streams one asset to disk
type AssetFetcher interface {
	Fetch(ctx context.Context, req downloader.Request, dest string) (downloader.FetchResult, error)
}

// TextWriter renders text lessons
type TextWriter interface {
	WriteLesson(ctx context.Context, html, title, dest string) (int64, error)
}

// Config ...
type Config struct {
	OutputDir         string
	Quality           string
	MaxDuplicateCount int
	Concurrency       int
}

// DefaultConcurrency is half the cpus, at least one
func DefaultConcurrency() int {
	concurrency := int(math.Ceil(float64(runtime.NumCPU()) / 2.0))
	if concurrency <= 0 {
		concurrency = 1
	}
	return concurrency
}

// Walker downloads whole courses into
// OutputDir/<course>/<nn>-<chapter>/<nn>-<lesson>.<ext>
type Walker struct {
	Config   Config
	Source   LessonSource
	Resolver AssetResolver
	Fetcher  AssetFetcher
	Text     TextWriter
	// Ledger is optional, it lets a rerun skip finished lessons
	Ledger *ledger.Ledger

	// course directory names handed out during this run, by course id
	mu          sync.Mutex
	courseNames *filenamify.UniqueNames
	courseDirs  map[string]string
}

type lessonTask struct {
	course kodekloud.Course
	lesson kodekloud.Lesson
	dir    string
	base   string
	names  *filenamify.UniqueNames
}

// walkState is shared by the tasks of one course
type walkState struct {
	mu     sync.Mutex
	result WalkResult
	fatal  error
	done   int
	total  int
}

func (s *walkState) update(f func(r *WalkResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(&s.result)
}

func (s *walkState) fail(err error) {
	s.update(func(r *WalkResult) {
		r.Failed++
		r.Errors = multierror.Append(r.Errors, err)
	})
}

func (s *walkState) setFatal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fatal == nil {
		s.fatal = err
	}
}

func (s *walkState) fatalErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

func (s *walkState) progress() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done++
	return s.done, s.total
}

// Walk downloads every lesson of course. Lessons run on a bounded worker
// pool; a lesson is only dispatched while the duplicate guard has not
// aborted. Lesson failures are collected in the result and skipped over.
// The returned error is set only for course fatal problems such as an
// unwritable output directory or a cancelled context.
func (w *Walker) Walk(ctx context.Context, course kodekloud.Course) (WalkResult, error) {
	courseDir := filepath.Join(w.Config.OutputDir, w.claimCourseDir(course))
	st := &walkState{
		result: WalkResult{Course: course.Title, Dir: courseDir},
		total:  course.LessonCount(),
	}
	if err := os.MkdirAll(courseDir, os.ModePerm); err != nil {
		return st.result, &downloader.WriteError{Path: courseDir, Err: err}
	}

	concurrency := w.Config.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	guard := NewDuplicateGuard(w.Config.MaxDuplicateCount)
	wp := workerpool.New(concurrency)
	// a slot is held from dispatch until the task observed its fingerprint,
	// so every dispatch decision sees the guard state of all earlier tasks
	// except the ones still in flight
	slots := make(chan struct{}, concurrency)
	stop := func() bool {
		return guard.Aborted() || st.fatalErr() != nil || ctx.Err() != nil
	}

	log := logger.WithField("course", course.Title)
	log.Infof("downloading %d lessons to %s", st.total, courseDir)

dispatch:
	for ci, ch := range course.Chapters {
		chapterDir := filepath.Join(courseDir, filenamify.WithOrdinal(ci, len(course.Chapters), ch.Title))
		names := filenamify.NewUniqueNames()
		dirCreated := false
		for li, l := range ch.Lessons {
			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				break dispatch
			}
			if stop() {
				<-slots
				break dispatch
			}
			if !dirCreated {
				if err := os.MkdirAll(chapterDir, os.ModePerm); err != nil {
					<-slots
					st.setFatal(&downloader.WriteError{Path: chapterDir, Err: err})
					break dispatch
				}
				dirCreated = true
			}
			t := lessonTask{
				course: course,
				lesson: l,
				dir:    chapterDir,
				base:   filenamify.WithOrdinal(li, len(ch.Lessons), l.Title),
				names:  names,
			}
			wp.Submit(func() {
				defer func() { <-slots }()
				w.runLesson(ctx, guard, st, t)
			})
		}
	}
	wp.StopWait()

	if guard.Aborted() {
		st.result.AbortReason = ErrDuplicateThreshold
		log.Warnf("stopped after %d identical downloads in a row, the session cookie may have expired", guard.Max())
	}
	if err := st.fatalErr(); err != nil {
		return st.result, err
	}
	if err := ctx.Err(); err != nil {
		return st.result, err
	}
	return st.result, nil
}

// claimCourseDir names the directory of a course. Two courses of one run
// whose titles normalize to the same name get distinct directories, a
// course walked again keeps its directory.
func (w *Walker) claimCourseDir(course kodekloud.Course) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.courseNames == nil {
		w.courseNames = filenamify.NewUniqueNames()
		w.courseDirs = make(map[string]string)
	}
	key := course.ID
	if key == "" {
		key = course.Slug
	}
	if name, ok := w.courseDirs[key]; ok && key != "" {
		return name
	}
	name := w.courseNames.Claim(filenamify.Filenamify(course.Title), "")
	if key != "" {
		w.courseDirs[key] = name
	}
	return name
}

func (w *Walker) runLesson(ctx context.Context, guard *DuplicateGuard, st *walkState, t lessonTask) {
	if guard.Aborted() || ctx.Err() != nil {
		return
	}
	log := logger.WithFields(logrus.Fields{"course": t.course.Title, "lesson": t.lesson.Title})

	if t.lesson.Err != nil {
		log.WithError(t.lesson.Err).Warn("unexpected lesson payload, skipping")
		st.fail(fmt.Errorf("lesson %q: %w", t.lesson.Title, t.lesson.Err))
		return
	}

	if w.resumed(t) {
		st.update(func(r *WalkResult) { r.Resumed++ })
		log.Debugf("already downloaded")
		return
	}

	lesson := t.lesson
	if w.Source != nil {
		detail, err := w.Source.LessonDetail(ctx, t.course.ID, t.lesson.ID)
		if err != nil {
			log.WithError(err).Warn("load lesson failed, skipping")
			st.fail(fmt.Errorf("lesson %q: %w", t.lesson.Title, err))
			return
		}
		lesson = t.lesson.Merge(detail)
	}

	c := content.Classify(lesson)
	switch c.Kind {
	case content.LabLink:
		dest := filepath.Join(t.dir, t.names.Claim(t.base, markdown.MDExtension))
		if _, err := markdown.WriteLabPlaceholder(lesson.Title, c.URL, dest); err != nil {
			st.setFatal(&downloader.WriteError{Path: dest, Err: err})
			return
		}
		st.update(func(r *WalkResult) { r.Skipped++ })
		return
	case content.PlainText:
		if w.Text == nil {
			st.update(func(r *WalkResult) { r.Skipped++ })
			return
		}
		dest := filepath.Join(t.dir, t.names.Claim(t.base, markdown.MDExtension))
		n, err := w.Text.WriteLesson(ctx, lesson.Content, lesson.Title, dest)
		if err != nil {
			st.setFatal(&downloader.WriteError{Path: dest, Err: err})
			return
		}
		st.update(func(r *WalkResult) { r.Written++ })
		w.markDone(t, dest, downloader.FetchResult{Path: dest, BytesWritten: n})
		return
	}
	if !c.Kind.Downloadable() {
		log.Infof("skipping: %s", c.Reason)
		st.update(func(r *WalkResult) { r.Skipped++ })
		return
	}

	asset, err := w.Resolver.Resolve(ctx, lesson, c, w.Config.Quality)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return
		case video.IsNotFound(err):
			log.WithError(err).Warn("no usable url, skipping")
			st.update(func(r *WalkResult) {
				r.Skipped++
				r.Errors = multierror.Append(r.Errors, fmt.Errorf("lesson %q: %w", lesson.Title, err))
			})
		default:
			log.WithError(err).Warn("resolve failed, skipping")
			st.fail(fmt.Errorf("lesson %q: %w", lesson.Title, err))
		}
		return
	}

	dest := filepath.Join(t.dir, t.names.Claim(t.base, asset.Extension))
	res, err := w.Fetcher.Fetch(ctx, downloader.Request{
		URL:     asset.URL,
		Headers: asset.Headers,
		Title:   lesson.Title,
	}, dest)
	if err != nil {
		var we *downloader.WriteError
		if errors.As(err, &we) {
			st.setFatal(err)
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		log.WithError(err).Warn("download failed, skipping")
		st.fail(fmt.Errorf("lesson %q: %w", lesson.Title, err))
		return
	}

	st.update(func(r *WalkResult) { r.Written++ })
	w.markDone(t, dest, res)
	done, total := st.progress()
	log.Infof("downloaded %s (%d/%d)", filepath.Base(dest), done, total)

	if guard.Observe(res.Fingerprint) == Abort {
		log.Warnf("content identical to the previous %d downloads", guard.Count()-1)
	}
}

func (w *Walker) resumed(t lessonTask) bool {
	if w.Ledger == nil {
		return false
	}
	e, ok, err := w.Ledger.Done(t.course.ID, t.lesson.ID)
	if err != nil {
		logger.Warnf("read ledger: %v", err)
		return false
	}
	if !ok {
		return false
	}
	if files.CheckFileExists(filepath.Join(w.Config.OutputDir, e.Path)) {
		return true
	}
	logger.Debugf("%s is gone, downloading again", e.Path)
	if err := w.Ledger.Forget(t.course.ID, t.lesson.ID); err != nil {
		logger.Warnf("write ledger: %v", err)
	}
	return false
}

func (w *Walker) markDone(t lessonTask, dest string, res downloader.FetchResult) {
	if w.Ledger == nil {
		return
	}
	rel, err := filepath.Rel(w.Config.OutputDir, dest)
	if err != nil {
		rel = dest
	}
	e := ledger.Entry{Path: rel, Size: res.BytesWritten}
	if !res.Fingerprint.IsZero() {
		e.Fingerprint = res.Fingerprint.String()
	}
	if err := w.Ledger.MarkDone(t.course.ID, t.lesson.ID, e); err != nil {
		logger.Warnf("write ledger: %v", err)
	}
}
