package workdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/pipelog/pkg/provider/file"
)

func TestResolve_Local(t *testing.T) {
	dir := t.TempDir()
	wd, err := Resolve(context.Background(), dir)
	require.NoError(t, err)
	defer wd.Close()

	assert.False(t, wd.IsRemote())
	assert.Equal(t, dir, wd.LocalRoot())
	assert.Nil(t, wd.Backend())

	lp := wd.Path(".logs", "run.log")
	assert.Equal(t, filepath.Join(dir, ".logs", "run.log"), lp.Local)
	assert.Empty(t, lp.Spec)
}

func TestResolve_EmptyURI(t *testing.T) {
	_, err := Resolve(context.Background(), "  ")
	assert.Error(t, err)
}

func TestSplitURI(t *testing.T) {
	bucket, prefix, err := splitURI("s3://my-bucket/pipelines/align/")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "pipelines/align", prefix)

	bucket, prefix, err = splitURI("s3://my-bucket")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Empty(t, prefix)

	_, _, err = splitURI("s3:///no-bucket")
	assert.Error(t, err)
}

func TestRemoteWorkdir_Paths(t *testing.T) {
	scratch := t.TempDir()
	remote := t.TempDir()
	backend, err := file.New(file.Config{BaseDir: remote})
	require.NoError(t, err)

	wd := ResolveWithBackend("s3://bucket/prefix", scratch, "prefix", backend)
	defer wd.Close()

	require.True(t, wd.IsRemote())
	lp := wd.Path(".logs", "run.log")
	assert.Equal(t, filepath.Join(scratch, ".logs", "run.log"), lp.Local)
	assert.Equal(t, "prefix/.logs/run.log", lp.Spec)
}

func TestMkdirParents_Idempotent(t *testing.T) {
	wd, err := Resolve(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer wd.Close()

	lp := wd.Path(".logs", "run.log")
	require.NoError(t, wd.MkdirParents(lp))
	require.NoError(t, wd.MkdirParents(lp))

	st, err := os.Stat(filepath.Dir(lp.Local))
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestRelink_PointsAtNewestTarget(t *testing.T) {
	wd, err := Resolve(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer wd.Close()

	first := wd.Path(".logs", "run-1.log")
	second := wd.Path(".logs", "run-2.log")
	latest := wd.Path("run-latest.log")

	require.NoError(t, wd.MkdirParents(first))
	require.NoError(t, os.WriteFile(first.Local, []byte("one\n"), 0o644))
	require.NoError(t, os.WriteFile(second.Local, []byte("two\n"), 0o644))

	require.NoError(t, wd.Relink(first, latest))
	got, err := os.ReadFile(latest.Local)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(got))

	// Re-linking replaces the old link without error.
	require.NoError(t, wd.Relink(second, latest))
	got, err = os.ReadFile(latest.Local)
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(got))
}

func TestRelink_ReplacesRegularFile(t *testing.T) {
	wd, err := Resolve(context.Background(), t.TempDir())
	require.NoError(t, err)
	defer wd.Close()

	target := wd.Path(".logs", "run-1.log")
	latest := wd.Path("run-latest.log")

	require.NoError(t, wd.MkdirParents(target))
	require.NoError(t, os.WriteFile(target.Local, []byte("log\n"), 0o644))
	// A plain file occupies the link path, e.g. a remote-mirrored copy
	// downloaded into a reused workdir.
	require.NoError(t, os.WriteFile(latest.Local, []byte("stale\n"), 0o644))

	require.NoError(t, wd.Relink(target, latest))

	st, err := os.Lstat(latest.Local)
	require.NoError(t, err)
	assert.NotZero(t, st.Mode()&os.ModeSymlink)
}
