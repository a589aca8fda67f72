// Package observability holds the process-level operational logger
// for the pipelog CLI. The logs the tool mirrors for a pipeline are
// domain data and flow through pkg/logging instead.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the shared logger for command implementations. It
// defaults to a no-op logger so library importers pay nothing; the CLI
// entrypoint replaces it via Init.
var CLILogger = zap.NewNop()

// Init configures CLILogger for console output. Debug enables
// development encoding with debug-level records.
func Init(debug bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}

	log, err := cfg.Build()
	if err != nil {
		return err
	}
	CLILogger = log
	return nil
}

// Sync flushes buffered log entries; call before process exit.
func Sync() {
	_ = CLILogger.Sync()
}
