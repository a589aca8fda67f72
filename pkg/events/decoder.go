package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// DefaultMaxLineBytes bounds a single event line.
const DefaultMaxLineBytes = 1 << 20

// Decoder reads records from a JSONL event stream.
//
// Unknown record types are returned as-is so readers can skip them;
// blank lines are skipped. Decoding stops at io.EOF.
type Decoder struct {
	s *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), DefaultMaxLineBytes)
	return &Decoder{s: s}
}

// Next returns the next record, or io.EOF when the stream ends.
func (d *Decoder) Next() (Record, error) {
	for d.s.Scan() {
		line := bytes.TrimSpace(d.s.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return Record{}, fmt.Errorf("events: parse record: %w", err)
		}
		if rec.Type == "" {
			return Record{}, fmt.Errorf("events: record missing type")
		}
		return rec, nil
	}
	if err := d.s.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

// DecodeProc unmarshals a ProcEvent payload.
func (r Record) DecodeProc() (ProcEvent, error) {
	var ev ProcEvent
	if err := json.Unmarshal(r.Data, &ev); err != nil {
		return ProcEvent{}, fmt.Errorf("events: %s payload: %w", r.Type, err)
	}
	return ev, nil
}

// DecodeJob unmarshals a JobEvent payload.
func (r Record) DecodeJob() (JobEvent, error) {
	var ev JobEvent
	if err := json.Unmarshal(r.Data, &ev); err != nil {
		return JobEvent{}, fmt.Errorf("events: %s payload: %w", r.Type, err)
	}
	return ev, nil
}

// DecodeComplete unmarshals a CompleteEvent payload.
func (r Record) DecodeComplete() (CompleteEvent, error) {
	var ev CompleteEvent
	if err := json.Unmarshal(r.Data, &ev); err != nil {
		return CompleteEvent{}, fmt.Errorf("events: %s payload: %w", r.Type, err)
	}
	return ev, nil
}

// DecodeLog unmarshals a LogEvent payload.
func (r Record) DecodeLog() (LogEvent, error) {
	var ev LogEvent
	if err := json.Unmarshal(r.Data, &ev); err != nil {
		return LogEvent{}, fmt.Errorf("events: %s payload: %w", r.Type, err)
	}
	return ev, nil
}
