// Package progress tracks per-job status for a running process and
// renders throttled summary lines, so a process with thousands of jobs
// does not produce one log line per job transition.
package progress

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Status is the lifecycle state of a single job. The enumeration is
// fixed and ordered; summary lines list buckets in this order.
type Status int

const (
	StatusInit Status = iota
	StatusQueued
	StatusSubmitted
	StatusRunning
	StatusKilled
	StatusSucceeded
	StatusFailed
	StatusCached

	numStatuses
)

// String returns the lower-case bucket name.
func (s Status) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusQueued:
		return "queued"
	case StatusSubmitted:
		return "submitted"
	case StatusRunning:
		return "running"
	case StatusKilled:
		return "killed"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCached:
		return "cached"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Table holds the current status of every job in one process.
//
// Invariant: a job index lives in exactly one bucket. Update moves the
// index atomically, so observers never see it in zero or two buckets.
// Indices are only unique within a process, so the table is Reset when
// the owning process completes.
//
// Table is safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	buckets [numStatuses]map[int]struct{}
}

// NewTable returns an empty table.
func NewTable() *Table {
	t := &Table{}
	for i := range t.buckets {
		t.buckets[i] = make(map[int]struct{})
	}
	return t
}

// Update records jobIndex's transition to status. For StatusInit the
// index is inserted directly (first sighting); for any other status
// the index is first removed from whichever bucket holds it.
//
// Transition validity is not checked: the framework is trusted to send
// semantically ordered transitions.
func (t *Table) Update(jobIndex int, status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if status != StatusInit {
		for i := range t.buckets {
			delete(t.buckets[i], jobIndex)
		}
	}
	t.buckets[status][jobIndex] = struct{}{}
}

// Total returns the number of jobs currently tracked.
func (t *Table) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for i := range t.buckets {
		n += len(t.buckets[i])
	}
	return n
}

// Reset clears every bucket.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.buckets {
		t.buckets[i] = make(map[int]struct{})
	}
}

// Snapshot returns sorted member indices per non-empty bucket, in
// enumeration order.
func (t *Table) Snapshot() []Bucket {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Bucket
	for i := range t.buckets {
		if len(t.buckets[i]) == 0 {
			continue
		}
		members := make([]int, 0, len(t.buckets[i]))
		for idx := range t.buckets[i] {
			members = append(members, idx)
		}
		sort.Ints(members)
		out = append(out, Bucket{Status: Status(i), Members: members})
	}
	return out
}

// Bucket is one non-empty status bucket from a Snapshot.
type Bucket struct {
	Status  Status
	Members []int
}

// briefListMaxRuns caps how many runs a rendered list shows before
// truncating with an ellipsis.
const briefListMaxRuns = 10

// BriefList renders sorted indices compactly: contiguous runs collapse
// to "a-b", isolated members list individually, and long lists
// truncate with an ellipsis.
func BriefList(indices []int) string {
	if len(indices) == 0 {
		return ""
	}

	var runs []string
	start, prev := indices[0], indices[0]
	flush := func() {
		if start == prev {
			runs = append(runs, fmt.Sprintf("%d", start))
		} else {
			runs = append(runs, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, idx := range indices[1:] {
		if idx == prev+1 {
			prev = idx
			continue
		}
		flush()
		start, prev = idx, idx
	}
	flush()

	if len(runs) > briefListMaxRuns {
		runs = append(runs[:briefListMaxRuns], "...")
	}
	return strings.Join(runs, ", ")
}
