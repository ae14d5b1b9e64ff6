package embedding

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls   int32
	onBatch func(texts []string) ([][]float32, error)
}

func (f *fakeEmbedder) GetEmbedding(ctx context.Context, q string) ([]float32, error) {
	return []float32{1}, nil
}

func (f *fakeEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.onBatch != nil {
		return f.onBatch(texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		n, _ := strconv.Atoi(t)
		out[i] = []float32{float32(n)}
	}
	return out, nil
}

func TestParallelEmbed_PreservesOrder(t *testing.T) {
	texts := make([]string, 250)
	for i := range texts {
		texts[i] = strconv.Itoa(i)
	}
	e := &fakeEmbedder{}

	vectors, err := ParallelEmbed(context.Background(), e, texts, 100, 3)
	require.NoError(t, err)
	require.Len(t, vectors, 250)
	for i, v := range vectors {
		assert.Equal(t, float32(i), v[0])
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&e.calls))
}

func TestParallelEmbed_Errors(t *testing.T) {
	t.Run("batch failure", func(t *testing.T) {
		e := &fakeEmbedder{onBatch: func(texts []string) ([][]float32, error) {
			return nil, errors.New("rate limited")
		}}
		_, err := ParallelEmbed(context.Background(), e, []string{"1", "2"}, 1, 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("short batch", func(t *testing.T) {
		e := &fakeEmbedder{onBatch: func(texts []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}}
		_, err := ParallelEmbed(context.Background(), e, []string{"1", "2"}, 10, 1)
		require.Error(t, err)
	})
}

func TestParallelEmbed_Empty(t *testing.T) {
	vectors, err := ParallelEmbed(context.Background(), &fakeEmbedder{}, nil, 100, 4)
	assert.NoError(t, err)
	assert.Nil(t, vectors)
}
