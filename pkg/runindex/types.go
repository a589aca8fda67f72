// Package runindex keeps a small on-disk index of pipeline runs and
// the log files they produced, so past run logs stay discoverable
// after run-latest has moved on.
package runindex

import "time"

// RunState is the lifecycle state of a recorded run.
//
// NOTE: These values are persisted in run JSON files and are part of
// the stable on-disk contract.
type RunState string

const (
	RunStateRunning   RunState = "running"
	RunStateSucceeded RunState = "succeeded"
	RunStateFailed    RunState = "failed"
)

// RunRecord is the persistent record written per run.
//
// The schema is designed for backward-compatible extension (additive
// fields).
type RunRecord struct {
	RunID    string   `json:"run_id"`
	Pipeline string   `json:"pipeline"`
	State    RunState `json:"state"`

	// Workdir is the run's working directory as the framework gave
	// it, which for remote runs is the object-store URI.
	Workdir string `json:"workdir"`

	// LogFile is the timestamped primary log, relative to the
	// workdir.
	LogFile string `json:"log_file"`

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
