package logging

import (
	"fmt"
	"os"
	"sync"
)

// Formatter renders a record to one log line, without the trailing
// newline. Formatters must be pure: they read the record and return
// text, never mutating shared state.
type Formatter func(rec Record) string

// FileSink writes formatted records to a file.
//
// The file is opened lazily on the first Emit, so a sink can be
// constructed before its directory is guaranteed to exist, and a run
// that logs nothing leaves no file behind. Close is idempotent; Emit
// after Close is a no-op rather than an error, since lifecycle
// callbacks may legitimately fire outside the sink's active window.
type FileSink struct {
	path     string
	format   Formatter
	minLevel Level
	truncate bool

	mu     sync.Mutex
	f      *os.File
	closed bool
}

// FileSinkConfig configures a FileSink.
type FileSinkConfig struct {
	// Path is the destination file. Parent directory must exist by
	// the time the first record arrives.
	Path string

	// Format renders records; required.
	Format Formatter

	// MinLevel drops records below this level. Zero value (debug)
	// passes everything.
	MinLevel Level

	// Truncate opens the file with O_TRUNC instead of O_APPEND.
	Truncate bool
}

// NewFileSink creates a sink for cfg. No I/O happens until the first
// emit.
func NewFileSink(cfg FileSinkConfig) (*FileSink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("logging: file sink path is required")
	}
	if cfg.Format == nil {
		return nil, fmt.Errorf("logging: file sink formatter is required")
	}
	return &FileSink{
		path:     cfg.Path,
		format:   cfg.Format,
		minLevel: cfg.MinLevel,
		truncate: cfg.Truncate,
	}, nil
}

// Path returns the destination file path.
func (s *FileSink) Path() string { return s.path }

// SetMinLevel adjusts the level filter for subsequent emits.
func (s *FileSink) SetMinLevel(l Level) {
	s.mu.Lock()
	s.minLevel = l
	s.mu.Unlock()
}

// Emit formats and writes one record.
func (s *FileSink) Emit(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || rec.Level < s.minLevel {
		return nil
	}
	if s.f == nil {
		flags := os.O_CREATE | os.O_WRONLY
		if s.truncate {
			flags |= os.O_TRUNC
		} else {
			flags |= os.O_APPEND
		}
		f, err := os.OpenFile(s.path, flags, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		s.f = f
	}

	if _, err := fmt.Fprintln(s.f, s.format(rec)); err != nil {
		return fmt.Errorf("write log file: %w", err)
	}
	return nil
}

// Close closes the underlying file if it was ever opened.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
