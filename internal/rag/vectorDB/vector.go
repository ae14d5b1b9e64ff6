package vectorDB

import (
	"context"
	"errors"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
)

// ErrTransient wraps failures the caller may retry (network, quota, deadline).
var ErrTransient = errors.New("transient vector store failure")

type DataProcessor interface {
	// CreateCollection is idempotent.
	CreateCollection(ctx context.Context, collectionName string) error
	UpsertBatch(ctx context.Context, collectionName string, chunks []commonModels.Chunk, vectors [][]float32) error
	// Search returns at most topK rows of corpus, by descending similarity.
	Search(ctx context.Context, collectionName string, vector []float32, corpus commonModels.CorpusTag, topK int) ([]commonModels.SearchResult, error)
}

func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
