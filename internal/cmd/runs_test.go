package cmd

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/pipelog/pkg/runindex"
)

func TestRuns_ListsNewestFirst(t *testing.T) {
	workdir := t.TempDir()
	store := runindex.NewStore(filepath.Join(workdir, ".logs", "runs"))

	t1 := time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Write(&runindex.RunRecord{
		RunID: "run-old", Pipeline: "p", State: runindex.RunStateSucceeded,
		Workdir: workdir, LogFile: ".logs/run-old.log", StartedAt: t1,
	}))
	require.NoError(t, store.Write(&runindex.RunRecord{
		RunID: "run-new", Pipeline: "p", State: runindex.RunStateRunning,
		Workdir: workdir, LogFile: ".logs/run-new.log", StartedAt: t2,
	}))

	out, err := executeCommand(t, "runs", "--workdir", workdir)
	require.NoError(t, err)

	assert.Contains(t, out, "RUN")
	newIdx := strings.Index(out, "run-new")
	oldIdx := strings.Index(out, "run-old")
	require.GreaterOrEqual(t, newIdx, 0)
	require.GreaterOrEqual(t, oldIdx, 0)
	assert.Less(t, newIdx, oldIdx, "newest run listed first")
	assert.Contains(t, out, ".logs/run-new.log")
}

func TestRuns_EmptyWorkdir(t *testing.T) {
	out, err := executeCommand(t, "runs", "--workdir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "no recorded runs")
}

func TestRuns_RemoteWorkdirIsRejected(t *testing.T) {
	_, err := executeCommand(t, "runs", "--workdir", "s3://bucket/pipelines/align/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://bucket/pipelines/align/.logs/runs/")
}
