package course

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrDuplicateThreshold is the designed early stop of a course whose
// downloads kept returning identical content. It is not a failure.
var ErrDuplicateThreshold = errors.New("duplicate threshold")

// WalkResult summarizes the walk of one course
type WalkResult struct {
	Course string
	Dir    string
	// Written counts lessons saved in this run
	Written int
	// Resumed counts lessons already saved by an earlier run
	Resumed int
	// Skipped counts lessons with nothing to fetch, including labs
	// and lessons whose url could not be resolved
	Skipped int
	Failed  int
	// AbortReason is ErrDuplicateThreshold when the walk stopped early
	AbortReason error
	// Errors collects the per lesson problems that were skipped over
	Errors *multierror.Error
	// Fatal is the error that stopped the course, e.g. an unwritable
	// output directory or a course tree that could not be loaded
	Fatal error
}

// Aborted ...
func (r WalkResult) Aborted() bool {
	return r.AbortReason != nil
}

// Err returns the collected lesson errors or nil
func (r WalkResult) Err() error {
	return r.Errors.ErrorOrNil()
}

// String renders the one line run summary
func (r WalkResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: written %d, already done %d, skipped %d, failed %d. ",
		r.Course, r.Written, r.Resumed, r.Skipped, r.Failed)
	switch {
	case errors.Is(r.Fatal, context.Canceled):
		sb.WriteString("Interrupted")
	case r.Fatal != nil:
		sb.WriteString("Failed: " + r.Fatal.Error())
	case r.Aborted():
		sb.WriteString("Aborted: " + r.AbortReason.Error())
	default:
		sb.WriteString("Completed")
	}
	return sb.String()
}
