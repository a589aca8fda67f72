// Package logging provides the run-scoped sink registry the pipeline
// framework exposes to plugins, plus file-backed sinks.
//
// The registry replaces a process-wide logger table: each pipeline run
// owns one Registry, so attach/detach never leaks across runs.
package logging

import (
	"fmt"
	"strings"
	"time"
)

// Level is a record severity. Ordering follows the usual convention;
// sinks drop records below their minimum level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// ParseLevel maps a level name to a Level. Names are matched
// case-insensitively; unknown names fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO", "":
		return LevelInfo
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	}
	return LevelInfo
}

// String returns the full upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Record is one log record as handed to sinks. Message holds the
// rendered text; formatting markup, if any, is still present and it is
// up to the sink's formatter to strip it.
type Record struct {
	Time    time.Time
	Level   Level
	Logger  string
	Message string
}

// Sink receives records dispatched by a Registry.
//
// Emit must tolerate being called before any underlying resource is
// open and after Close; both are ordinary conditions during a run's
// setup and teardown windows.
type Sink interface {
	Emit(rec Record) error
	Close() error
}
