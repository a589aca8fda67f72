// Package hooks defines the lifecycle contract between the pipeline
// framework and its logging add-ons.
//
// The framework owns graph construction, scheduling, templating, and
// command execution; a plugin only reacts to the callbacks declared
// here. Callbacks for jobs of the same process may arrive in any
// interleaving from the framework's dispatch loop, but never
// concurrently with each other.
package hooks

import (
	"context"

	"github.com/3leaps/pipelog/pkg/logging"
)

// Logger namespaces the framework emits records under. The framework's
// own output lives below PipelineNamespace; the execution engine logs
// under EngineNamespace.
const (
	PipelineNamespace = "pipeline"
	EngineNamespace   = "engine"
)

// Pipeline describes one pipeline run as seen by plugins.
type Pipeline struct {
	// Name is the pipeline name for this run invocation.
	Name string

	// Workdir is the run's working directory: a local path or an
	// object-store URI (e.g. s3://bucket/prefix).
	Workdir string

	// PluginOpts carries free-form plugin configuration from the
	// pipeline's options. Keys are plugin-defined.
	PluginOpts map[string]any

	// Loggers is the run-scoped sink registry. Plugins attach and
	// detach their sinks here rather than on process-wide state.
	Loggers *logging.Registry
}

// Proc describes one process (a node in the pipeline graph).
type Proc struct {
	// Name is the process name, unique within the pipeline.
	Name string

	// Size is the number of jobs the process fans out to.
	Size int

	// Workdir is the process working directory, under the pipeline's.
	Workdir string

	// PluginOpts overlays the pipeline-level plugin options.
	PluginOpts map[string]any

	Pipeline *Pipeline
}

// Job is one unit of work. Index is unique within the owning process
// only; indices restart at zero for every process.
type Job struct {
	Index int
	Proc  *Proc
}

// Plugin is the full set of lifecycle callbacks a framework add-on may
// receive. The framework guarantees OnPipelineComplete runs even when
// the run is aborted, so implementations must tolerate teardown after
// partial initialization.
type Plugin interface {
	OnPipelineInit(ctx context.Context, p *Pipeline) error
	OnPipelineComplete(ctx context.Context, p *Pipeline, succeeded bool) error

	OnProcStart(ctx context.Context, proc *Proc) error
	OnProcDone(ctx context.Context, proc *Proc, succeeded bool) error

	OnJobInit(ctx context.Context, job *Job) error
	OnJobQueued(ctx context.Context, job *Job) error
	OnJobSubmitted(ctx context.Context, job *Job) error
	OnJobStarted(ctx context.Context, job *Job) error
	OnJobKilled(ctx context.Context, job *Job) error
	OnJobSucceeded(ctx context.Context, job *Job) error
	OnJobFailed(ctx context.Context, job *Job) error
	OnJobCached(ctx context.Context, job *Job) error
}
