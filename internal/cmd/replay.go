package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/pipelog/internal/observability"
	"github.com/3leaps/pipelog/pkg/events"
	"github.com/3leaps/pipelog/pkg/hooks"
	"github.com/3leaps/pipelog/pkg/log2file"
	"github.com/3leaps/pipelog/pkg/logging"
	"github.com/3leaps/pipelog/pkg/runspec"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded event stream into run-log artifacts",
	Long: `Replay drives the log2file plugin with a recorded lifecycle event
stream, producing the same .logs artifacts a live run would have.

The run spec names the pipeline, its workdir, and its processes; the
events file holds one JSONL lifecycle record per line.

Example:
  pipelog replay --spec run.yaml --events events.jsonl
  pipelog replay --spec run.yaml --events - < events.jsonl`,
	RunE: runReplay,
}

var (
	replaySpecPath   string
	replayEventsPath string
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replaySpecPath, "spec", "s", "", "Path to run spec YAML (required)")
	replayCmd.Flags().StringVarP(&replayEventsPath, "events", "e", "", "Path to JSONL event stream, or - for stdin (required)")

	_ = replayCmd.MarkFlagRequired("spec")
	_ = replayCmd.MarkFlagRequired("events")
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	spec, err := runspec.Load(replaySpecPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load run spec",
			zap.String("path", replaySpecPath),
			zap.Error(err))
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if replayEventsPath != "-" {
		f, err := os.Open(replayEventsPath)
		if err != nil {
			return fmt.Errorf("open events file: %w", err)
		}
		defer f.Close()
		in = f
	}

	pipeline := &hooks.Pipeline{
		Name:       spec.Name,
		Workdir:    spec.Workdir,
		PluginOpts: spec.PluginOpts,
		Loggers:    logging.NewRegistry(),
	}

	plugin := log2file.New(log2file.WithLogger(observability.CLILogger))
	if err := plugin.OnPipelineInit(ctx, pipeline); err != nil {
		return err
	}

	observability.CLILogger.Info("Replaying events",
		zap.String("pipeline", spec.Name),
		zap.String("workdir", spec.Workdir),
		zap.String("logfile", plugin.LogFile().Local))

	completed, err := replayStream(cmd, spec, pipeline, plugin, in)
	if !completed {
		// The framework contract guarantees teardown even for
		// aborted runs; a truncated stream gets the same treatment.
		if terr := plugin.OnPipelineComplete(ctx, pipeline, false); terr != nil && err == nil {
			err = terr
		}
	}
	return err
}

// replayStream feeds records to the plugin until the stream ends or a
// pipeline_complete record arrives. It reports whether teardown
// already ran.
func replayStream(cmd *cobra.Command, spec *runspec.RunSpec, pipeline *hooks.Pipeline, plugin *log2file.Plugin, in io.Reader) (bool, error) {
	ctx := cmd.Context()
	procs := make(map[string]*hooks.Proc)

	procFor := func(name string) *hooks.Proc {
		if p, ok := procs[name]; ok {
			return p
		}
		p := &hooks.Proc{Name: name, Pipeline: pipeline}
		if ps := spec.Proc(name); ps != nil {
			p.Size = ps.Size
			p.PluginOpts = ps.PluginOpts
			p.Workdir = spec.Workdir + "/" + name
		}
		procs[name] = p
		return p
	}

	dec := events.NewDecoder(in)
	for {
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch rec.Type {
		case events.TypePipelineComplete:
			ev, err := rec.DecodeComplete()
			if err != nil {
				return false, err
			}
			return true, plugin.OnPipelineComplete(ctx, pipeline, ev.Succeeded)

		case events.TypeProcStart:
			ev, err := rec.DecodeProc()
			if err != nil {
				return false, err
			}
			proc := procFor(ev.Proc)
			if ev.Size > 0 {
				proc.Size = ev.Size
			}
			if err := plugin.OnProcStart(ctx, proc); err != nil {
				return false, err
			}

		case events.TypeProcDone:
			ev, err := rec.DecodeProc()
			if err != nil {
				return false, err
			}
			if err := plugin.OnProcDone(ctx, procFor(ev.Proc), ev.Succeeded); err != nil {
				return false, err
			}

		case events.TypeLog:
			ev, err := rec.DecodeLog()
			if err != nil {
				return false, err
			}
			pipeline.Loggers.Emit(logging.Record{
				Time:    rec.TS,
				Level:   logging.ParseLevel(ev.Level),
				Logger:  ev.Logger,
				Message: ev.Message,
			})

		case events.TypePipelineInit:
			// Init already ran before the stream.

		default:
			if handler := jobHandler(plugin, rec.Type); handler != nil {
				ev, err := rec.DecodeJob()
				if err != nil {
					return false, err
				}
				job := &hooks.Job{Index: ev.Index, Proc: procFor(ev.Proc)}
				if err := handler(ctx, job); err != nil {
					return false, err
				}
			} else {
				observability.CLILogger.Debug("Skipping unknown record type",
					zap.String("type", rec.Type))
			}
		}
	}
}

func jobHandler(plugin *log2file.Plugin, recType string) func(ctx context.Context, job *hooks.Job) error {
	switch recType {
	case events.TypeJobInit:
		return plugin.OnJobInit
	case events.TypeJobQueued:
		return plugin.OnJobQueued
	case events.TypeJobSubmitted:
		return plugin.OnJobSubmitted
	case events.TypeJobStarted:
		return plugin.OnJobStarted
	case events.TypeJobKilled:
		return plugin.OnJobKilled
	case events.TypeJobSucceeded:
		return plugin.OnJobSucceeded
	case events.TypeJobFailed:
		return plugin.OnJobFailed
	case events.TypeJobCached:
		return plugin.OnJobCached
	}
	return nil
}
