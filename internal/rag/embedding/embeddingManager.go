package embedding

import (
	"context"
	"fmt"

	"github.com/akolanti/ogtriage/internal/config"
	"golang.org/x/sync/errgroup"
)

type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}

// ParallelEmbed splits texts into batches and embeds them concurrently.
// The returned vectors line up index for index with texts.
func ParallelEmbed(ctx context.Context, e Embedder, texts []string, batchSize int, parallelism int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = len(texts)
	}
	if parallelism <= 0 {
		parallelism = 1
	}

	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		g.Go(func() error {
			bctx, cancel := context.WithTimeout(gctx, config.EmbeddingCallTimeout)
			defer cancel()
			batch, err := e.BatchEmbedding(bctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("embedding batch %d-%d: %w", start, end, err)
			}
			if len(batch) != end-start {
				return fmt.Errorf("embedding batch %d-%d: got %d vectors", start, end, len(batch))
			}
			// each goroutine owns a disjoint slice range
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
