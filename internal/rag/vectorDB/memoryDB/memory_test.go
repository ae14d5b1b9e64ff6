package memoryDB

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
)

func chunk(id string, corpus commonModels.CorpusTag, text string) commonModels.Chunk {
	return commonModels.Chunk{Id: id, Text: text, Corpus: corpus, SourceName: id + ".pdf"}
}

func TestStore_SearchRanksAndFilters(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateCollection(ctx, "c"))

	require.NoError(t, s.UpsertBatch(ctx, "c",
		[]commonModels.Chunk{
			chunk("a", commonModels.CorpusRegulations, "close"),
			chunk("b", commonModels.CorpusRegulations, "far"),
			chunk("u", commonModels.CorpusUploads, "closest but other corpus"),
		},
		[][]float32{{1, 0.1}, {0, 1}, {1, 0}},
	))

	res, err := s.Search(ctx, "c", []float32{1, 0}, commonModels.CorpusRegulations, 5)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "close", res[0].Content)
	assert.Equal(t, "far", res[1].Content)
	assert.Greater(t, res[0].Similarity, res[1].Similarity)

	top1, err := s.Search(ctx, "c", []float32{1, 0}, commonModels.CorpusRegulations, 1)
	require.NoError(t, err)
	assert.Len(t, top1, 1)
}

func TestStore_EmptyCorpusIsNotAnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateCollection(ctx, "c"))

	res, err := s.Search(ctx, "c", []float32{1}, commonModels.CorpusRegulations, 5)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Empty(t, res)

	res, err = s.Search(ctx, "missing", []float32{1}, commonModels.CorpusRegulations, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestStore_UpsertSameIdReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateCollection(ctx, "c"))

	c := chunk("a", commonModels.CorpusRegulations, "v1")
	require.NoError(t, s.UpsertBatch(ctx, "c", []commonModels.Chunk{c}, [][]float32{{1}}))
	c.Text = "v2"
	require.NoError(t, s.UpsertBatch(ctx, "c", []commonModels.Chunk{c}, [][]float32{{1}}))

	assert.Equal(t, 1, s.Count("c", commonModels.CorpusRegulations))
	assert.Equal(t, "v2", s.Chunks("c", commonModels.CorpusRegulations)[0].Text)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := New()
	assert.Error(t, s.CreateCollection(ctx, ""))
	assert.Error(t, s.UpsertBatch(ctx, "nope", []commonModels.Chunk{{Id: "a"}}, [][]float32{{1}}))
	require.NoError(t, s.CreateCollection(ctx, "c"))
	assert.Error(t, s.UpsertBatch(ctx, "c", []commonModels.Chunk{{Id: "a"}}, nil))
}

func TestCosine_ZeroVector(t *testing.T) {
	assert.Equal(t, float32(0), cosine([]float32{0, 0}, 0, []float32{1, 0}, 1))
}
