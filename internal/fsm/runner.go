package fsm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/briandowns/spinner"
	"github.com/manifoldco/promptui"

	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/loader"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
	"github.com/nicoxiang/kodekloud-downloader/internal/ui"
)

// CourseLister lists the courses available to the session
type CourseLister interface {
	Courses(ctx context.Context) ([]kodekloud.CourseSummary, error)
}

// DownloadFunc downloads one course by slug. A course that fails on its own
// is reported by the func itself; an error means the session has to end.
type DownloadFunc func(ctx context.Context, slug string) error

// Prompter is the interactive surface, replaced in tests
type Prompter struct {
	ModeSelect     func() (ui.Mode, error)
	CourseURLInput func() (string, error)
	CourseSelect   func([]kodekloud.CourseSummary) ([]kodekloud.CourseSummary, error)
}

// DefaultPrompter asks on the terminal
func DefaultPrompter() Prompter {
	return Prompter{
		ModeSelect:     ui.ModeSelect,
		CourseURLInput: ui.CourseURLInput,
		CourseSelect:   ui.CourseSelect,
	}
}

// FSMRunner drives the interactive flow: choose how to pick courses, pick
// them, download them, start over. It ends on interrupt.
type FSMRunner struct {
	ctx          context.Context
	currentState State
	lister       CourseLister
	download     DownloadFunc
	prompter     Prompter
	sp           *spinner.Spinner
	courses      []kodekloud.CourseSummary
	selected     []string
}

// NewFSMRunner creates and initializes a new FSMRunner instance
func NewFSMRunner(ctx context.Context, lister CourseLister, download DownloadFunc, prompter Prompter, sp *spinner.Spinner) *FSMRunner {
	return &FSMRunner{
		ctx:          ctx,
		currentState: StateSelectMode,
		lister:       lister,
		download:     download,
		prompter:     prompter,
		sp:           sp,
	}
}

// Run executes the finite state machine loop, handling user input and state transitions.
func (r *FSMRunner) Run() error {
	for {
		var err error
		switch r.currentState {
		case StateSelectMode:
			var mode ui.Mode
			mode, err = r.prompter.ModeSelect()
			if err == nil {
				if mode == ui.ModeURL {
					r.currentState = StateInputCourseURL
				} else {
					r.currentState = StateSelectCourses
				}
			}
		case StateInputCourseURL:
			var slug string
			slug, err = r.prompter.CourseURLInput()
			if err == nil {
				r.selected = []string{slug}
				r.currentState = StateDownload
			}
		case StateSelectCourses:
			err = r.handleSelectCourses()
		case StateDownload:
			err = r.handleDownload()
		}

		if err != nil {
			switch {
			case errors.Is(err, context.Canceled):
				// clear line
				fmt.Print("\033[1A\033[2K")
				return nil
			case errors.Is(err, promptui.ErrInterrupt):
				// clear two lines beacause promptui print one more line if interrupt
				fmt.Print("\033[1A\033[2K\033[1A\033[2K")
				return nil
			case os.IsTimeout(err):
				logger.Errorf(err, "Request timed out")
				return fmt.Errorf("request timeout")
			default:
				return err
			}
		}
	}
}

func (r *FSMRunner) handleSelectCourses() error {
	if len(r.courses) == 0 {
		err := loader.Run(r.sp, "[ Loading course list... ]", func() error {
			var err error
			r.courses, err = r.lister.Courses(r.ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	selected, err := r.prompter.CourseSelect(r.courses)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		fmt.Fprintln(os.Stderr, "No course selected")
		r.currentState = StateSelectMode
		return nil
	}
	r.selected = r.selected[:0]
	for _, c := range selected {
		r.selected = append(r.selected, c.Slug)
	}
	r.currentState = StateDownload
	return nil
}

// handleDownload downloads the selected courses one after another
func (r *FSMRunner) handleDownload() error {
	for _, slug := range r.selected {
		if err := r.download(r.ctx, slug); err != nil {
			return err
		}
	}
	r.selected = nil
	r.currentState = StateSelectMode
	return nil
}
