package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainFormat(rec Record) string {
	return rec.Level.String() + " " + rec.Message
}

func testRecord(level Level, msg string) Record {
	return Record{
		Time:    time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
		Level:   level,
		Logger:  "pipeline/main",
		Message: msg,
	}
}

func TestFileSink_LazyOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	sink, err := NewFileSink(FileSinkConfig{Path: path, Format: plainFormat})
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file before the first emit")

	require.NoError(t, sink.Emit(testRecord(LevelInfo, "hello")))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "INFO hello\n", string(data))
}

func TestFileSink_NeverOpenedLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	sink, err := NewFileSink(FileSinkConfig{Path: path, Format: plainFormat})
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileSink_EmitAfterCloseIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	sink, err := NewFileSink(FileSinkConfig{Path: path, Format: plainFormat})
	require.NoError(t, err)

	require.NoError(t, sink.Emit(testRecord(LevelInfo, "before")))
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Emit(testRecord(LevelInfo, "after")))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "INFO before\n", string(data))
}

func TestFileSink_MinLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	sink, err := NewFileSink(FileSinkConfig{Path: path, Format: plainFormat, MinLevel: LevelWarning})
	require.NoError(t, err)

	require.NoError(t, sink.Emit(testRecord(LevelDebug, "dropped")))
	require.NoError(t, sink.Emit(testRecord(LevelInfo, "dropped")))
	require.NoError(t, sink.Emit(testRecord(LevelError, "kept")))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR kept\n", string(data))
}

func TestFileSink_TruncateVsAppend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.log")
	require.NoError(t, os.WriteFile(path, []byte("stale line\n"), 0o644))

	truncating, err := NewFileSink(FileSinkConfig{Path: path, Format: plainFormat, Truncate: true})
	require.NoError(t, err)
	require.NoError(t, truncating.Emit(testRecord(LevelInfo, "fresh")))
	require.NoError(t, truncating.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "INFO fresh\n", string(data))

	appending, err := NewFileSink(FileSinkConfig{Path: path, Format: plainFormat})
	require.NoError(t, err)
	require.NoError(t, appending.Emit(testRecord(LevelInfo, "more")))
	require.NoError(t, appending.Close())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "INFO fresh\nINFO more\n", string(data))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, LevelWarning, ParseLevel("warn"))
	assert.Equal(t, LevelError, ParseLevel("Error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}
