package logging

import (
	"fmt"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Registry routes records from named loggers to attached sinks.
//
// Sinks attach under a doublestar glob over logger names, e.g.
// "pipeline/**" matches "pipeline/main" and "pipeline/core/sched".
// Attaching the same sink twice under the same pattern is a no-op, and
// Detach removes a sink from every pattern it was attached under, so
// an attach in setup always pairs with exactly one detach in teardown.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries []registryEntry
}

type registryEntry struct {
	pattern string
	sink    Sink
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Attach subscribes sink to loggers matching pattern. Idempotent for
// an identical (pattern, sink) pair.
func (r *Registry) Attach(pattern string, sink Sink) error {
	if sink == nil {
		return fmt.Errorf("logging: attach nil sink")
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("logging: invalid pattern %q", pattern)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.pattern == pattern && e.sink == sink {
			return nil
		}
	}
	r.entries = append(r.entries, registryEntry{pattern: pattern, sink: sink})
	return nil
}

// Detach removes sink from all patterns. Unknown sinks are ignored.
func (r *Registry) Detach(sink Sink) {
	if sink == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.sink != sink {
			kept = append(kept, e)
		}
	}
	r.entries = kept
}

// Log dispatches one record to every sink whose pattern matches the
// logger name. Sink errors are swallowed: a failing sink must not
// disturb the run or the other sinks.
func (r *Registry) Log(logger string, level Level, format string, args ...any) {
	rec := Record{
		Time:    time.Now(),
		Level:   level,
		Logger:  logger,
		Message: fmt.Sprintf(format, args...),
	}
	r.Emit(rec)
}

// Emit dispatches a pre-built record. Used by callers that control the
// record timestamp, e.g. tests and replays.
func (r *Registry) Emit(rec Record) {
	r.mu.Lock()
	sinks := make([]Sink, 0, len(r.entries))
	for _, e := range r.entries {
		if ok, err := doublestar.Match(e.pattern, rec.Logger); err == nil && ok {
			sinks = append(sinks, e.sink)
		}
	}
	r.mu.Unlock()

	for _, s := range sinks {
		_ = s.Emit(rec)
	}
}
