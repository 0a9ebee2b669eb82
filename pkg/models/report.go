package models

import (
	"time"
)

// Report represents the results of one comparison run
type Report struct {
	// Run identification
	RunID        string
	ExpectedRoot string
	ActualRoot   string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Root is the fully populated diff tree
	Root *DiffNode

	// Errors collects per-entry failures in traversal order
	Errors []*CompareError

	// Overall status
	Status RunStatus
}

// Statistics holds comparison run metrics
type Statistics struct {
	// Entries visited (unique paths across both trees)
	FilesScanned int
	DirsScanned  int

	// Outcome counts over file nodes
	Equal        int
	Modified     int
	Added        int
	Removed      int
	TypeMismatch int
	Errored      int
}

// Differences returns the total number of non-equal, non-error file outcomes
func (s Statistics) Differences() int {
	return s.Modified + s.Added + s.Removed + s.TypeMismatch
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusClean indicates every compared path was equal
	StatusClean RunStatus = "clean"
	// StatusDifferent indicates at least one semantic difference
	StatusDifferent RunStatus = "different"
	// StatusErrored indicates at least one path could not be compared
	StatusErrored RunStatus = "errored"
	// StatusFatal indicates a root could not be enumerated at all
	StatusFatal RunStatus = "fatal"
)

// ExitCode returns the process exit code for the run status
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusClean:
		return 0
	case StatusDifferent:
		return 1
	case StatusErrored:
		return 2
	case StatusFatal:
		return 3
	default:
		return 3
	}
}

// StatusFor derives the run status from collected statistics. Error nodes
// dominate differences: an unreadable file is a harder failure than a
// readable-but-different one.
func StatusFor(stats Statistics) RunStatus {
	if stats.Errored > 0 {
		return StatusErrored
	}
	if stats.Differences() > 0 {
		return StatusDifferent
	}
	return StatusClean
}

// Finalize fills derived report fields once the tree is complete
func (r *Report) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	if r.Status != StatusFatal {
		r.Status = StatusFor(r.Stats)
	}
}
