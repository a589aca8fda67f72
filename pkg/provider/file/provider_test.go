package file

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/pipelog/pkg/provider"
)

func newTestProvider(t *testing.T) (*Provider, string) {
	t.Helper()
	dir := t.TempDir()
	p, err := New(Config{BaseDir: dir})
	require.NoError(t, err)
	return p, dir
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, dir := newTestProvider(t)

	content := []byte("log line 1\nlog line 2\n")
	require.NoError(t, p.PutObject(ctx, "logs/run.log", bytes.NewReader(content), int64(len(content))))

	// Written under the base dir, parents created.
	onDisk, err := os.ReadFile(filepath.Join(dir, "logs", "run.log"))
	require.NoError(t, err)
	assert.Equal(t, content, onDisk)

	rc, size, err := p.GetObject(ctx, "logs/run.log")
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, int64(len(content)), size)

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestPutObject_Overwrites(t *testing.T) {
	ctx := context.Background()
	p, dir := newTestProvider(t)

	require.NoError(t, p.PutObject(ctx, "run.log", bytes.NewReader([]byte("v1")), 2))
	require.NoError(t, p.PutObject(ctx, "run.log", bytes.NewReader([]byte("v2")), 2))

	got, err := os.ReadFile(filepath.Join(dir, "run.log"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestHead(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t)

	require.NoError(t, p.PutObject(ctx, "a/b.log", bytes.NewReader([]byte("data")), 4))

	meta, err := p.Head(ctx, "a/b.log")
	require.NoError(t, err)
	assert.Equal(t, "a/b.log", meta.Key)
	assert.Equal(t, int64(4), meta.Size)
	assert.False(t, meta.LastModified.IsZero())

	_, err = p.Head(ctx, "a/missing.log")
	assert.True(t, provider.IsNotFound(err))

	// Directories are not objects.
	_, err = p.Head(ctx, "a")
	assert.True(t, provider.IsNotFound(err))
}

func TestGetObject_NotFound(t *testing.T) {
	p, _ := newTestProvider(t)
	_, _, err := p.GetObject(context.Background(), "missing.log")
	assert.True(t, provider.IsNotFound(err))

	var perr *provider.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "GetObject", perr.Op)
	assert.Equal(t, provider.ProviderFile, perr.Provider)
}

func TestDeleteObject_MissingIsOK(t *testing.T) {
	ctx := context.Background()
	p, dir := newTestProvider(t)

	require.NoError(t, p.PutObject(ctx, "run.log", bytes.NewReader([]byte("x")), 1))
	require.NoError(t, p.DeleteObject(ctx, "run.log"))
	_, err := os.Stat(filepath.Join(dir, "run.log"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, p.DeleteObject(ctx, "run.log"))
}

func TestFullPath_RejectsTraversal(t *testing.T) {
	p, _ := newTestProvider(t)
	_, _, err := p.GetObject(context.Background(), "../outside")
	assert.Error(t, err)
}
