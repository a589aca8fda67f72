package log2file

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/3leaps/pipelog/pkg/progress"
	"github.com/3leaps/pipelog/pkg/workdir"
)

// Progress reporting modes.
const (
	// ModeStatus keeps a per-process status table and emits
	// time-throttled bucket summaries.
	ModeStatus = "status"

	// ModeGlyphs batches compact per-job outcome tokens and emits a
	// line whenever one fills up.
	ModeGlyphs = "glyphs"
)

// Options is the plugin configuration, read from the pipeline's (and
// each process's) free-form plugin-opts map. Every field is optional.
type Options struct {
	// EngineLog toggles the per-process execution-engine log sink.
	EngineLog bool `mapstructure:"engine_log"`

	// EngineLogLevel is the minimum level for the engine sink.
	EngineLogLevel string `mapstructure:"engine_log_level"`

	// EngineLogAppend keeps a pre-existing engine log instead of
	// removing it at process start.
	EngineLogAppend bool `mapstructure:"engine_log_append"`

	// SummaryInterval throttles status-summary emission per process.
	SummaryInterval time.Duration `mapstructure:"summary_interval"`

	// SyncInterval throttles remote mirroring of log content.
	SyncInterval time.Duration `mapstructure:"sync_interval"`

	// ProgressMode selects ModeStatus or ModeGlyphs.
	ProgressMode string `mapstructure:"progress_mode"`
}

// defaultOptions returns the stock configuration. Remote workdirs get
// a wider summary window, since every emission is another candidate
// for a remote copy.
func defaultOptions(remote bool) Options {
	opts := Options{
		EngineLog:       true,
		EngineLogLevel:  "INFO",
		SummaryInterval: progress.DefaultSummaryInterval,
		SyncInterval:    workdir.DefaultSyncInterval,
		ProgressMode:    ModeStatus,
	}
	if remote {
		opts.SummaryInterval = 2 * progress.DefaultSummaryInterval
	}
	return opts
}

// decodeOptions layers the pipeline-level and process-level plugin
// opts maps over the defaults. Duration fields accept Go duration
// strings ("10s") as well as numeric nanoseconds.
func decodeOptions(remote bool, layers ...map[string]any) (Options, error) {
	opts := defaultOptions(remote)
	for _, layer := range layers {
		if len(layer) == 0 {
			continue
		}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:     &opts,
			DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		})
		if err != nil {
			return opts, fmt.Errorf("log2file: build options decoder: %w", err)
		}
		if err := dec.Decode(layer); err != nil {
			return opts, fmt.Errorf("log2file: decode plugin opts: %w", err)
		}
	}

	switch opts.ProgressMode {
	case ModeStatus, ModeGlyphs:
	default:
		return opts, fmt.Errorf("log2file: unknown progress_mode %q", opts.ProgressMode)
	}
	return opts, nil
}
