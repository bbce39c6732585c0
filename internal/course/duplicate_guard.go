package course

import (
	"sync"

	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/downloader"
)

// Decision is the outcome of one DuplicateGuard observation
type Decision int

const (
	// Continue keeps walking the course
	Continue Decision = iota
	// Abort stops dispatching lessons of the course
	Abort
)

// String ...
func (d Decision) String() string {
	if d == Abort {
		return "abort"
	}
	return "continue"
}

// DuplicateGuard watches the fingerprints of consecutive downloads of one
// course. A run of identical content usually means the session expired and
// the platform serves the same placeholder for every lesson.
//
// The counter is the length of the current run of equal fingerprints. The
// guard aborts once it reaches max and stays aborted. A max <= 0 never aborts.
type DuplicateGuard struct {
	mu      sync.Mutex
	max     int
	last    downloader.Fingerprint
	count   int
	aborted bool
}

// NewDuplicateGuard ...
func NewDuplicateGuard(max int) *DuplicateGuard {
	return &DuplicateGuard{max: max}
}

// Observe records the fingerprint of a finished download
func (g *DuplicateGuard) Observe(fp downloader.Fingerprint) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.aborted {
		return Abort
	}
	if g.count > 0 && fp == g.last {
		g.count++
	} else {
		g.last = fp
		g.count = 1
	}
	if g.max > 0 && g.count >= g.max {
		g.aborted = true
		return Abort
	}
	return Continue
}

// Aborted reports whether the threshold was reached
func (g *DuplicateGuard) Aborted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.aborted
}

// Count is the length of the current run of equal fingerprints
func (g *DuplicateGuard) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}

// Max ...
func (g *DuplicateGuard) Max() int {
	return g.max
}
