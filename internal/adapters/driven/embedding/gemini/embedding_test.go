package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hmv123/RAG-Application/internal/core/domain"
)

type fakeClient struct {
	err        error
	batchSizes []int
	short      bool
	closed     bool
}

func (f *fakeClient) embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text))}, nil
}

func (f *fakeClient) embedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.batchSizes = append(f.batchSizes, len(texts))
	n := len(texts)
	if f.short {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

func (f *fakeClient) close() error {
	f.closed = true
	return nil
}

func TestNewEmbeddingService_RequiresKey(t *testing.T) {
	_, err := NewEmbeddingService(t.Context(), Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEmbeddingService_Embed(t *testing.T) {
	svc := newWithClient(&fakeClient{}, Config{})

	vec, err := svc.Embed(t.Context(), "abc")

	require.NoError(t, err)
	assert.Equal(t, []float32{3}, vec)
	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}

func TestEmbeddingService_EmbedBatchSplits(t *testing.T) {
	fake := &fakeClient{}
	svc := newWithClient(fake, Config{})
	texts := make([]string, 250)

	vectors, err := svc.EmbedBatch(t.Context(), texts)

	require.NoError(t, err)
	assert.Len(t, vectors, 250)
	assert.Equal(t, []int{100, 100, 50}, fake.batchSizes)
}

func TestEmbeddingService_Errors(t *testing.T) {
	svc := newWithClient(&fakeClient{err: errors.New("quota exceeded")}, Config{})

	_, err := svc.Embed(t.Context(), "x")
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Error(t, svc.Ping(t.Context()))

	short := newWithClient(&fakeClient{short: true}, Config{})
	_, err = short.EmbedBatch(t.Context(), []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestEmbeddingService_Close(t *testing.T) {
	fake := &fakeClient{}
	svc := newWithClient(fake, Config{})

	require.NoError(t, svc.Close())
	assert.True(t, fake.closed)
}
