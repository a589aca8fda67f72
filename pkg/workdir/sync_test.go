package workdir

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/pipelog/pkg/provider"
	"github.com/3leaps/pipelog/pkg/provider/file"
)

// countingBackend wraps a provider and counts PutObject calls.
type countingBackend struct {
	provider.Provider
	puts atomic.Int64
}

func (c *countingBackend) PutObject(ctx context.Context, key string, body io.Reader, contentLength int64) error {
	c.puts.Add(1)
	return c.Provider.PutObject(ctx, key, body, contentLength)
}

func newSyncFixture(t *testing.T, interval time.Duration) (*Workdir, *Syncer, *countingBackend, string) {
	t.Helper()
	scratch := t.TempDir()
	remoteDir := t.TempDir()

	fp, err := file.New(file.Config{BaseDir: remoteDir})
	require.NoError(t, err)
	backend := &countingBackend{Provider: fp}

	wd := ResolveWithBackend("s3://bucket/wd", scratch, "wd", backend)
	return wd, NewSyncer(wd, interval), backend, remoteDir
}

func TestSync_WritesWhenRemoteMissing(t *testing.T) {
	ctx := context.Background()
	wd, syncer, backend, remoteDir := newSyncFixture(t, time.Hour)

	lp := wd.Path("run.log")
	require.NoError(t, os.WriteFile(lp.Local, []byte("line 1\n"), 0o644))

	require.NoError(t, syncer.Sync(ctx, lp, false))
	assert.Equal(t, int64(1), backend.puts.Load())

	got, err := os.ReadFile(remoteDir + "/wd/run.log")
	require.NoError(t, err)
	assert.Equal(t, "line 1\n", string(got))
}

func TestSync_SkipsIdenticalContent(t *testing.T) {
	ctx := context.Background()
	// Nanosecond interval: the throttle never blocks, so every
	// unforced attempt reaches the content comparison.
	wd, syncer, backend, _ := newSyncFixture(t, time.Nanosecond)

	lp := wd.Path("run.log")
	require.NoError(t, os.WriteFile(lp.Local, []byte("same\n"), 0o644))

	require.NoError(t, syncer.Sync(ctx, lp, false))
	require.Equal(t, int64(1), backend.puts.Load())

	time.Sleep(10 * time.Microsecond)
	require.NoError(t, syncer.Sync(ctx, lp, false))
	assert.Equal(t, int64(1), backend.puts.Load(), "identical content must not be rewritten")
}

func TestSync_ThrottledUntilIntervalElapses(t *testing.T) {
	ctx := context.Background()
	wd, syncer, backend, _ := newSyncFixture(t, time.Hour)

	lp := wd.Path("run.log")
	require.NoError(t, os.WriteFile(lp.Local, []byte("v1\n"), 0o644))
	require.NoError(t, syncer.Sync(ctx, lp, false))
	require.Equal(t, int64(1), backend.puts.Load())

	// Changed content, but inside the interval: skipped, not an error.
	require.NoError(t, os.WriteFile(lp.Local, []byte("v2\n"), 0o644))
	require.NoError(t, syncer.Sync(ctx, lp, false))
	assert.Equal(t, int64(1), backend.puts.Load())
}

func TestSync_ForceBypassesThrottleAndComparison(t *testing.T) {
	ctx := context.Background()
	wd, syncer, backend, remoteDir := newSyncFixture(t, time.Hour)

	lp := wd.Path("run.log")
	require.NoError(t, os.WriteFile(lp.Local, []byte("v1\n"), 0o644))
	require.NoError(t, syncer.Sync(ctx, lp, false))

	require.NoError(t, os.WriteFile(lp.Local, []byte("v2\n"), 0o644))
	require.NoError(t, syncer.Sync(ctx, lp, true))
	assert.Equal(t, int64(2), backend.puts.Load())

	got, err := os.ReadFile(remoteDir + "/wd/run.log")
	require.NoError(t, err)
	assert.Equal(t, "v2\n", string(got))
}

func TestSync_LocalWorkdirIsNoop(t *testing.T) {
	ctx := context.Background()
	wd, err := Resolve(ctx, t.TempDir())
	require.NoError(t, err)
	defer wd.Close()

	syncer := NewSyncer(wd, time.Millisecond)
	lp := wd.Path("run.log")
	require.NoError(t, os.WriteFile(lp.Local, []byte("local\n"), 0o644))

	assert.NoError(t, syncer.Sync(ctx, lp, true))
}

func TestSync_MissingLocalFileIsNoop(t *testing.T) {
	ctx := context.Background()
	wd, syncer, backend, _ := newSyncFixture(t, time.Hour)

	// A lazily-opened sink that never emitted leaves no local file.
	require.NoError(t, syncer.Sync(ctx, wd.Path("never-written.log"), true))
	assert.Equal(t, int64(0), backend.puts.Load())
}
