package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/ogtriage/internal/adapter/utils"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/rag/embedding"
	"github.com/akolanti/ogtriage/internal/rag/vectorDB"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

/*
Store is the only thing agents, ingestion and handlers see of retrieval.
The private service holds the embedder and the vector backend so callers
cannot reach around it, and tests swap either side through NewService.
*/

type Store interface {
	EnsureCollection(ctx context.Context) error
	// Upsert embeds and writes chunks under corpus, returning how many were stored.
	Upsert(ctx context.Context, chunks []commonModels.Chunk, corpus commonModels.CorpusTag) (int, error)
	// Search never errors on an empty corpus; it returns an empty slice.
	Search(ctx context.Context, query string, corpus commonModels.CorpusTag, topK int) ([]commonModels.SearchResult, error)
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	embedder    embedding.Embedder
	collection  string
	batchSize   int
	parallelism int
	defaultTopK int
	logger      *logger_i.Logger
}

type Option func(*service)

func WithCollection(name string) Option {
	return func(s *service) { s.collection = name }
}

func WithBatching(batchSize int, parallelism int) Option {
	return func(s *service) {
		s.batchSize = batchSize
		s.parallelism = parallelism
	}
}

func WithDefaultTopK(k int) Option {
	return func(s *service) { s.defaultTopK = k }
}

func NewService(vector vectorDB.DataProcessor, em embedding.Embedder, opts ...Option) Store {
	s := &service{
		vectorDB:    vector,
		embedder:    em,
		collection:  config.EmbeddingDBName,
		batchSize:   config.EmbeddingBatchSize,
		parallelism: config.EmbeddingParallelism,
		defaultTopK: config.DefaultTopK,
		logger:      logger_i.NewLogger("RAG Store"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.batchSize <= 0 {
		s.batchSize = config.EmbeddingBatchSize
	}
	return s
}

func (s *service) EnsureCollection(ctx context.Context) error {
	return timed("vector_create_collection", func() error {
		return s.vectorDB.CreateCollection(ctx, s.collection)
	})
}

func (s *service) Upsert(ctx context.Context, chunks []commonModels.Chunk, corpus commonModels.CorpusTag) (int, error) {
	log := s.logger.WithTrace(ctx).With("corpus", corpus)
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return 0, fmt.Errorf("ensuring collection: %w", err)
	}

	// Ids are derived from the target corpus, so the same file stored as an
	// upload never replaces its regulation points. Repeated pieces of one
	// source collapse to the first occurrence.
	tagged := make([]commonModels.Chunk, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		c.Corpus = corpus
		c.Id = utils.GetDeterministicUUID(string(corpus), c.SourceName, c.Text)
		if seen[c.Id] {
			continue
		}
		seen[c.Id] = true
		tagged = append(tagged, c)
		texts = append(texts, c.Text)
	}
	if dropped := len(chunks) - len(tagged); dropped > 0 {
		log.Debug("Skipped repeated chunks", "dropped", dropped)
	}

	var vectors [][]float32
	err := timed("embedding_batch", func() error {
		var embedErr error
		vectors, embedErr = embedding.ParallelEmbed(ctx, s.embedder, texts, s.batchSize, s.parallelism)
		return embedErr
	})
	if err != nil {
		log.Error("Embedding failed", "error", err)
		return 0, err
	}

	for start := 0; start < len(tagged); start += s.batchSize {
		end := min(start+s.batchSize, len(tagged))
		err = timed("vector_upsert", func() error {
			return s.vectorDB.UpsertBatch(ctx, s.collection, tagged[start:end], vectors[start:end])
		})
		if err != nil {
			log.Error("Upsert failed", "error", err, "stored", start)
			return start, fmt.Errorf("upserting batch %d-%d: %w", start, end, err)
		}
	}
	log.Debug("Upserted chunks", "count", len(tagged))
	return len(tagged), nil
}

func (s *service) Search(ctx context.Context, query string, corpus commonModels.CorpusTag, topK int) ([]commonModels.SearchResult, error) {
	log := s.logger.WithTrace(ctx).With("corpus", corpus)
	if strings.TrimSpace(query) == "" {
		return []commonModels.SearchResult{}, nil
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	var vector []float32
	err := timed("embedding", func() error {
		embedCtx, cancel := context.WithTimeout(ctx, config.EmbeddingCallTimeout)
		defer cancel()
		var embedErr error
		vector, embedErr = s.embedder.GetEmbedding(embedCtx, query)
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var results []commonModels.SearchResult
	err = timed("vector_search", func() error {
		var searchErr error
		results, searchErr = s.vectorDB.Search(ctx, s.collection, vector, corpus, topK)
		return searchErr
	})
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", corpus, err)
	}
	if results == nil {
		results = []commonModels.SearchResult{}
	}
	if len(results) > topK {
		results = results[:topK]
	}
	log.Debug("Search finished", "hits", len(results), "topK", topK)
	return results, nil
}
