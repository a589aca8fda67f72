// Package events defines the JSONL event stream the replay command
// consumes: one framework lifecycle event per line, wrapped in a typed
// record envelope. Each line is a self-contained JSON object that can
// be parsed independently.
package events

import (
	"encoding/json"
	"time"
)

// Record type constants define the envelope types for the event
// stream. These follow the pattern: pipelog.<event>.v<version>
const (
	TypePipelineInit     = "pipelog.pipeline_init.v1"
	TypePipelineComplete = "pipelog.pipeline_complete.v1"
	TypeProcStart        = "pipelog.proc_start.v1"
	TypeProcDone         = "pipelog.proc_done.v1"
	TypeJobInit          = "pipelog.job_init.v1"
	TypeJobQueued        = "pipelog.job_queued.v1"
	TypeJobSubmitted     = "pipelog.job_submitted.v1"
	TypeJobStarted       = "pipelog.job_started.v1"
	TypeJobKilled        = "pipelog.job_killed.v1"
	TypeJobSucceeded     = "pipelog.job_succeeded.v1"
	TypeJobFailed        = "pipelog.job_failed.v1"
	TypeJobCached        = "pipelog.job_cached.v1"
	TypeLog              = "pipelog.log.v1"
)

// Record is the envelope for every line of the event stream.
type Record struct {
	// Type identifies the record type (e.g., "pipelog.job_failed.v1").
	Type string `json:"type"`

	// TS is the timestamp when the event happened (RFC3339Nano).
	TS time.Time `json:"ts"`

	// Run is the correlation ID of the recorded run, if known.
	Run string `json:"run,omitempty"`

	// Data is the type-specific payload.
	Data json.RawMessage `json:"data,omitempty"`
}

// ProcEvent is the payload for proc_start/proc_done records.
type ProcEvent struct {
	Proc      string `json:"proc"`
	Size      int    `json:"size,omitempty"`
	Succeeded bool   `json:"succeeded,omitempty"`
}

// JobEvent is the payload for job transition records.
type JobEvent struct {
	Proc  string `json:"proc"`
	Index int    `json:"index"`
}

// CompleteEvent is the payload for pipeline_complete records.
type CompleteEvent struct {
	Succeeded bool `json:"succeeded"`
}

// LogEvent is the payload for log records: a line some framework
// logger emitted during the recorded run.
type LogEvent struct {
	Logger  string `json:"logger"`
	Level   string `json:"level"`
	Message string `json:"message"`
}
