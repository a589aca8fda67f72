// Package log2file is the logging add-on: it mirrors the framework's
// log records to a timestamped file under the pipeline's working
// directory, tracks per-job status per process, and emits throttled
// progress summaries so large pipelines do not flood the log. When the
// workdir lives in object storage the file is written to local scratch
// and copied out on a best-effort schedule.
package log2file

import (
	"context"
	"fmt"
	"os"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/3leaps/pipelog/pkg/hooks"
	"github.com/3leaps/pipelog/pkg/logging"
	"github.com/3leaps/pipelog/pkg/progress"
	"github.com/3leaps/pipelog/pkg/runindex"
	"github.com/3leaps/pipelog/pkg/workdir"
)

// Filesystem artifacts under the workdir.
const (
	logsDir    = ".logs"
	runsDir    = "runs"
	latestName = "run-latest.log"

	// progressLogger is the logger name summary lines are emitted
	// under. It sits inside the pipeline namespace so the primary
	// formatter renders it like any framework record.
	progressLogger = hooks.PipelineNamespace + "/log2file"
)

// Plugin implements hooks.Plugin.
//
// One Plugin instance serves one pipeline run at a time; the framework
// calls its hooks from a single dispatch loop, but all state is
// mutex-guarded so a threaded embedding works too.
type Plugin struct {
	log *zap.Logger
	now func() time.Time

	mu sync.Mutex

	// Pipeline-run scope, reset on completion.
	opts     Options
	wd       *workdir.Workdir
	syncer   *workdir.Syncer
	registry *logging.Registry
	sink     *logging.FileSink
	logfile  workdir.LogPath
	latest   workdir.LogPath
	runID    string
	store    *runindex.Store

	// Process scope.
	engineSink *logging.FileSink
	engineLog  workdir.LogPath
	emitters   map[string]*progress.Emitter
	batchers   map[string]*progress.Batcher
}

// Option customizes a Plugin.
type Option func(*Plugin)

// WithLogger sets the operational logger for the plugin's own
// diagnostics (sync failures and the like). Mirrored pipeline records
// never pass through it.
func WithLogger(log *zap.Logger) Option {
	return func(p *Plugin) { p.log = log }
}

// withClock overrides the time source; tests only.
func withClock(now func() time.Time) Option {
	return func(p *Plugin) { p.now = now }
}

// New returns an idle plugin, ready for OnPipelineInit.
func New(opts ...Option) *Plugin {
	p := &Plugin{
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

var _ hooks.Plugin = (*Plugin)(nil)

// LogFile returns the primary log destination, useful for surfacing
// "logs at ..." messages. Zero value before init.
func (p *Plugin) LogFile() workdir.LogPath {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logfile
}

// OnPipelineInit opens the run log and attaches it to the framework's
// logger namespace. Errors propagate: without a log sink the run has
// no durable diagnostics, so initialization is expected to fail
// loudly.
//
// A second init while a sink is live (teardown never ran, e.g. after a
// hard abort) is a no-op, guarding against double attachment.
func (p *Plugin) OnPipelineInit(ctx context.Context, pipeline *hooks.Pipeline) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sink != nil {
		return nil
	}

	wd, err := workdir.Resolve(ctx, pipeline.Workdir)
	if err != nil {
		return fmt.Errorf("log2file: resolve workdir: %w", err)
	}

	opts, err := decodeOptions(wd.IsRemote(), pipeline.PluginOpts)
	if err != nil {
		wd.Close()
		return err
	}

	start := p.now()
	logName := fmt.Sprintf("run-%s.log", start.Format("2006_01_02_15_04_05"))
	logfile := wd.Path(logsDir, logName)
	latest := wd.Path(latestName)

	if err := wd.MkdirParents(logfile); err != nil {
		wd.Close()
		return fmt.Errorf("log2file: %w", err)
	}
	if err := wd.Relink(logfile, latest); err != nil {
		wd.Close()
		return fmt.Errorf("log2file: %w", err)
	}

	sink, err := logging.NewFileSink(logging.FileSinkConfig{
		Path:   logfile.Local,
		Format: primaryFormat,
	})
	if err != nil {
		wd.Close()
		return fmt.Errorf("log2file: %w", err)
	}

	pattern := hooks.PipelineNamespace + "/**"
	if err := pipeline.Loggers.Attach(pattern, sink); err != nil {
		wd.Close()
		return fmt.Errorf("log2file: %w", err)
	}

	p.opts = opts
	p.wd = wd
	p.syncer = workdir.NewSyncer(wd, opts.SyncInterval)
	p.registry = pipeline.Loggers
	p.sink = sink
	p.logfile = logfile
	p.latest = latest
	p.runID = uuid.NewString()
	p.emitters = make(map[string]*progress.Emitter)
	p.batchers = make(map[string]*progress.Batcher)

	p.store = runindex.NewStore(wd.Path(logsDir, runsDir).Local)
	rec := &runindex.RunRecord{
		RunID:     p.runID,
		Pipeline:  pipeline.Name,
		State:     runindex.RunStateRunning,
		Workdir:   wd.URI(),
		LogFile:   path.Join(logsDir, logName),
		StartedAt: start.UTC(),
	}
	if err := p.store.Write(rec); err != nil {
		// The run index is a convenience; its failure must not stop
		// the run.
		p.log.Warn("write run record", zap.Error(err))
	}

	return nil
}

// OnPipelineComplete detaches and closes the run log, performs the
// final forced syncs, finalizes the run record, and clears run state
// so the instance can serve another run. Safe to call when init never
// completed.
func (p *Plugin) OnPipelineComplete(ctx context.Context, pipeline *hooks.Pipeline, succeeded bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sink != nil {
		p.registry.Detach(p.sink)
		// Teardown must proceed whatever state the file is in.
		if err := p.sink.Close(); err != nil {
			p.log.Warn("close run log sink", zap.Error(err))
		}
	}

	if p.store != nil {
		if rec, err := p.store.Get(p.runID); err == nil {
			rec.State = runindex.RunStateFailed
			if succeeded {
				rec.State = runindex.RunStateSucceeded
			}
			ended := p.now().UTC()
			rec.EndedAt = &ended
			if err := p.store.Write(rec); err != nil {
				p.log.Warn("finalize run record", zap.Error(err))
			}
		}
	}

	if p.syncer != nil {
		p.syncFinal(ctx, p.logfile)
		p.syncFinal(ctx, p.latest)
		if p.runID != "" {
			p.syncFinal(ctx, p.wd.Path(logsDir, runsDir, p.runID+".json"))
		}
	}

	if p.wd != nil {
		if err := p.wd.Close(); err != nil {
			p.log.Warn("close workdir backend", zap.Error(err))
		}
	}

	p.reset()
	return nil
}

// OnProcStart opens the per-process engine sink, when enabled, and
// prepares the process's progress tracker.
func (p *Plugin) OnProcStart(ctx context.Context, proc *hooks.Proc) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sink == nil {
		return nil
	}

	popts, err := p.procOptions(proc)
	if err != nil {
		return err
	}

	// A prior engine sink still open means the previous process never
	// reached OnProcDone; release it before a new one attaches.
	if p.engineSink != nil {
		p.registry.Detach(p.engineSink)
		if err := p.engineSink.Close(); err != nil {
			p.log.Warn("close engine log sink", zap.Error(err))
		}
		p.engineSink = nil
		p.engineLog = workdir.LogPath{}
	}

	switch popts.ProgressMode {
	case ModeGlyphs:
		p.batchers[proc.Name] = progress.NewBatcher(proc.Name, proc.Size)
	default:
		p.emitters[proc.Name] = progress.NewEmitter(proc.Name, proc.Size, popts.SummaryInterval)
	}

	if !popts.EngineLog {
		return nil
	}

	engineLog := p.wd.Path(logsDir, proc.Name+".engine.log")
	if !popts.EngineLogAppend {
		if err := os.Remove(engineLog.Local); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("log2file: remove stale engine log: %w", err)
		}
	}

	sink, err := logging.NewFileSink(logging.FileSinkConfig{
		Path:     engineLog.Local,
		Format:   engineFormat,
		MinLevel: logging.ParseLevel(popts.EngineLogLevel),
	})
	if err != nil {
		return fmt.Errorf("log2file: %w", err)
	}
	if err := p.registry.Attach(hooks.EngineNamespace+"/**", sink); err != nil {
		return fmt.Errorf("log2file: %w", err)
	}

	p.engineSink = sink
	p.engineLog = engineLog
	return nil
}

// OnProcDone tears down the engine sink, flushes the process's final
// progress line, resets the per-process status state, and gives the
// primary log a sync opportunity.
func (p *Plugin) OnProcDone(ctx context.Context, proc *hooks.Proc, succeeded bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engineSink != nil {
		p.registry.Detach(p.engineSink)
		if err := p.engineSink.Close(); err != nil {
			p.log.Warn("close engine log sink", zap.Error(err))
		}
		p.engineSink = nil

		// One final copy of the finished engine log.
		if err := p.syncer.Sync(ctx, p.engineLog, true); err != nil {
			p.log.Warn("sync engine log", zap.Error(err))
		}
		p.engineLog = workdir.LogPath{}
	}

	if p.sink == nil {
		return nil
	}

	if b, ok := p.batchers[proc.Name]; ok {
		if line, ok := b.Flush(); ok {
			p.emitLine(line)
		}
		delete(p.batchers, proc.Name)
	}
	if e, ok := p.emitters[proc.Name]; ok {
		if line, ok := e.Summary(true); ok {
			p.emitLine(line)
		}
		// Job indices are only unique within the process.
		e.Reset()
		delete(p.emitters, proc.Name)
	}

	if err := p.syncer.Sync(ctx, p.logfile, false); err != nil {
		p.log.Warn("sync run log", zap.Error(err))
	}
	if err := p.syncer.Sync(ctx, p.latest, false); err != nil {
		p.log.Warn("sync latest log", zap.Error(err))
	}
	return nil
}

func (p *Plugin) OnJobInit(ctx context.Context, job *hooks.Job) error {
	return p.onJobStatus(job, progress.StatusInit, "")
}

func (p *Plugin) OnJobQueued(ctx context.Context, job *hooks.Job) error {
	return p.onJobStatus(job, progress.StatusQueued, "")
}

func (p *Plugin) OnJobSubmitted(ctx context.Context, job *hooks.Job) error {
	return p.onJobStatus(job, progress.StatusSubmitted, "")
}

func (p *Plugin) OnJobStarted(ctx context.Context, job *hooks.Job) error {
	return p.onJobStatus(job, progress.StatusRunning, "")
}

func (p *Plugin) OnJobKilled(ctx context.Context, job *hooks.Job) error {
	return p.onJobStatus(job, progress.StatusKilled, "")
}

func (p *Plugin) OnJobSucceeded(ctx context.Context, job *hooks.Job) error {
	return p.onJobStatus(job, progress.StatusSucceeded, progress.GlyphSucceeded)
}

func (p *Plugin) OnJobFailed(ctx context.Context, job *hooks.Job) error {
	return p.onJobStatus(job, progress.StatusFailed, progress.GlyphFailed)
}

func (p *Plugin) OnJobCached(ctx context.Context, job *hooks.Job) error {
	return p.onJobStatus(job, progress.StatusCached, progress.GlyphSucceeded)
}

// onJobStatus routes one job transition into the owning process's
// tracker and emits whatever the throttle allows.
func (p *Plugin) onJobStatus(job *hooks.Job, status progress.Status, glyph string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Callbacks outside the sink's active window are legitimate.
	if p.sink == nil || job == nil || job.Proc == nil {
		return nil
	}

	proc := job.Proc.Name
	if b, ok := p.batchers[proc]; ok {
		// The batching variant only records terminal outcomes.
		if glyph == "" {
			return nil
		}
		if line, ok := b.Add(job.Index, glyph); ok {
			p.emitLine(line)
		}
		return nil
	}

	e, ok := p.emitters[proc]
	if !ok {
		e = progress.NewEmitter(proc, job.Proc.Size, p.opts.SummaryInterval)
		p.emitters[proc] = e
	}
	e.Update(job.Index, status)
	if line, ok := e.Summary(false); ok {
		p.emitLine(line)
	}
	return nil
}

// emitLine writes a progress line straight to the file sink, bypassing
// the registry so consoles and other sinks are not spammed with what
// is file-level detail.
func (p *Plugin) emitLine(line string) {
	rec := logging.Record{
		Time:    p.now(),
		Level:   logging.LevelInfo,
		Logger:  progressLogger,
		Message: line,
	}
	if err := p.sink.Emit(rec); err != nil {
		p.log.Warn("emit progress line", zap.Error(err))
	}
}

// procOptions overlays a process's plugin opts on the pipeline-level
// options.
func (p *Plugin) procOptions(proc *hooks.Proc) (Options, error) {
	var layers []map[string]any
	if proc.Pipeline != nil {
		layers = append(layers, proc.Pipeline.PluginOpts)
	}
	layers = append(layers, proc.PluginOpts)
	return decodeOptions(p.wd.IsRemote(), layers...)
}

// syncFinal force-syncs one artifact during teardown; failures are
// recorded and otherwise ignored.
func (p *Plugin) syncFinal(ctx context.Context, lp workdir.LogPath) {
	if err := p.syncer.Sync(ctx, lp, true); err != nil {
		p.log.Warn("final sync", zap.String("path", lp.Local), zap.Error(err))
	}
}

// reset clears all run-scoped state.
func (p *Plugin) reset() {
	p.opts = Options{}
	p.wd = nil
	p.syncer = nil
	p.registry = nil
	p.sink = nil
	p.logfile = workdir.LogPath{}
	p.latest = workdir.LogPath{}
	p.runID = ""
	p.store = nil
	p.engineSink = nil
	p.engineLog = workdir.LogPath{}
	p.emitters = nil
	p.batchers = nil
}
