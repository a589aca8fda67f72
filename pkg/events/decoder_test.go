package events

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleStream = `
{"type":"pipelog.pipeline_init.v1","ts":"2026-08-23T09:30:00Z","run":"r-1"}
{"type":"pipelog.proc_start.v1","ts":"2026-08-23T09:30:01Z","run":"r-1","data":{"proc":"align","size":3}}

{"type":"pipelog.job_failed.v1","ts":"2026-08-23T09:30:02Z","run":"r-1","data":{"proc":"align","index":1}}
{"type":"pipelog.log.v1","ts":"2026-08-23T09:30:03Z","run":"r-1","data":{"logger":"pipeline/main","level":"INFO","message":"hello"}}
{"type":"pipelog.pipeline_complete.v1","ts":"2026-08-23T09:30:04Z","run":"r-1","data":{"succeeded":false}}
`

func TestDecoder_Stream(t *testing.T) {
	d := NewDecoder(strings.NewReader(sampleStream))

	var recs []Record
	for {
		rec, err := d.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		recs = append(recs, rec)
	}

	require.Len(t, recs, 5, "blank lines are skipped")
	assert.Equal(t, TypePipelineInit, recs[0].Type)
	assert.Equal(t, "r-1", recs[0].Run)
	assert.Equal(t, time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC), recs[0].TS)

	proc, err := recs[1].DecodeProc()
	require.NoError(t, err)
	assert.Equal(t, "align", proc.Proc)
	assert.Equal(t, 3, proc.Size)

	job, err := recs[2].DecodeJob()
	require.NoError(t, err)
	assert.Equal(t, 1, job.Index)

	log, err := recs[3].DecodeLog()
	require.NoError(t, err)
	assert.Equal(t, "pipeline/main", log.Logger)
	assert.Equal(t, "INFO", log.Level)
	assert.Equal(t, "hello", log.Message)

	complete, err := recs[4].DecodeComplete()
	require.NoError(t, err)
	assert.False(t, complete.Succeeded)
}

func TestDecoder_MalformedLines(t *testing.T) {
	d := NewDecoder(strings.NewReader("{not json}\n"))
	_, err := d.Next()
	assert.ErrorContains(t, err, "parse record")

	d = NewDecoder(strings.NewReader(`{"ts":"2026-08-23T09:30:00Z"}` + "\n"))
	_, err = d.Next()
	assert.ErrorContains(t, err, "missing type")
}

func TestDecoder_UnknownTypePassedThrough(t *testing.T) {
	d := NewDecoder(strings.NewReader(`{"type":"pipelog.future_thing.v2","ts":"2026-08-23T09:30:00Z"}` + "\n"))
	rec, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "pipelog.future_thing.v2", rec.Type)
}

func TestDecoder_EmptyStream(t *testing.T) {
	d := NewDecoder(strings.NewReader(""))
	_, err := d.Next()
	assert.Equal(t, io.EOF, err)
}
