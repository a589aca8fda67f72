package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultSummaryInterval is the minimum gap between two throttled
// summary emissions for one process.
const DefaultSummaryInterval = 5 * time.Second

// smallProcThreshold is the job count at or below which throttling is
// disabled: summarizing a handful of jobs on every transition costs
// nothing, and immediate feedback is worth more.
const smallProcThreshold = 5

// Emitter renders throttled status summaries for one process.
//
// Emitter owns a Table and a last-emission timestamp. Summary skips
// rendering unless forced, the interval has elapsed, or the process is
// small; on emission the timestamp advances, so two throttled
// emissions are never closer than the interval.
type Emitter struct {
	proc     string
	size     int
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	table    *Table
	lastEmit time.Time
}

// NewEmitter creates an emitter for the named process with size jobs.
// The size decides the small-process bypass up front, before any job
// has been tracked; a non-positive size means unknown, and the bypass
// then falls back to the number of jobs tracked so far. A non-positive
// interval falls back to DefaultSummaryInterval.
func NewEmitter(proc string, size int, interval time.Duration) *Emitter {
	if interval <= 0 {
		interval = DefaultSummaryInterval
	}
	return &Emitter{
		proc:     proc,
		size:     size,
		interval: interval,
		now:      time.Now,
		table:    NewTable(),
	}
}

// Update records a job transition. It does not emit; callers follow
// with Summary so emission policy stays in one place.
func (e *Emitter) Update(jobIndex int, status Status) {
	e.table.Update(jobIndex, status)
}

// Summary renders one line listing every non-empty bucket in
// enumeration order, e.g.
//
//	align: running: 0-3, 7 | succeeded: 4-6 | failed: 8
//
// The line and true are returned when an emission is due; otherwise
// ("", false) and no state changes. An emission is due when always is
// set, when the process has at most five jobs, or when the configured
// interval has elapsed since the previous emission. An empty table
// never emits.
func (e *Emitter) Summary(always bool) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.table.Total() == 0 {
		return "", false
	}
	jobs := e.size
	if jobs <= 0 {
		jobs = e.table.Total()
	}
	if !always && jobs > smallProcThreshold {
		if now := e.now(); now.Sub(e.lastEmit) < e.interval {
			return "", false
		}
	}

	parts := make([]string, 0, int(numStatuses))
	for _, b := range e.table.Snapshot() {
		parts = append(parts, fmt.Sprintf("%s: %s", b.Status, BriefList(b.Members)))
	}

	e.lastEmit = e.now()
	return fmt.Sprintf("%s: %s", e.proc, strings.Join(parts, " | ")), true
}

// Reset clears the status table and the throttle window, typically at
// process completion.
func (e *Emitter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table.Reset()
	e.lastEmit = time.Time{}
}
