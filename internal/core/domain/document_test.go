package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *IngestReport {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &IngestReport{
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Documents: []DocumentResult{
			{Name: "a.pdf", ChunksTotal: 3, ChunksUploaded: 3},
			{Name: "b.pdf", Err: errors.New("corrupt")},
			{
				Name:           "c.pdf",
				ChunksTotal:    4,
				ChunksUploaded: 2,
				ChunkFailures: []ChunkFailure{
					{Position: 1, Err: errors.New("timeout")},
					{Position: 3, Err: errors.New("timeout")},
				},
			},
		},
	}
}

func TestIngestReport_Counts(t *testing.T) {
	r := sampleReport()

	assert.Equal(t, 2, r.Succeeded())
	assert.Equal(t, 5, r.TotalUploaded())
	assert.Equal(t, 2, r.TotalChunkFailures())
	assert.Equal(t, 3*time.Second, r.Duration())

	failed := r.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "b.pdf", failed[0].Name)
}

func TestIngestReport_Result(t *testing.T) {
	r := sampleReport()

	res, ok := r.Result("c.pdf")
	require.True(t, ok)
	assert.True(t, res.OK())
	assert.Equal(t, 2, res.ChunksUploaded)

	_, ok = r.Result("missing.pdf")
	assert.False(t, ok)
}

func TestIngestReport_Empty(t *testing.T) {
	r := &IngestReport{}

	assert.Equal(t, 0, r.Succeeded())
	assert.Equal(t, 0, r.TotalUploaded())
	assert.Nil(t, r.Failed())
}
