// Package app builds the process wide clients both binaries share.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/ogtriage/internal/agents"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/customHttpClient"
	"github.com/akolanti/ogtriage/internal/rag"
	"github.com/akolanti/ogtriage/internal/rag/embedding"
	"github.com/akolanti/ogtriage/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/ogtriage/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/ogtriage/internal/rag/ingest"
	"github.com/akolanti/ogtriage/internal/rag/llm"
	"github.com/akolanti/ogtriage/internal/rag/llm/gemini"
	"github.com/akolanti/ogtriage/internal/rag/vectorDB"
	"github.com/akolanti/ogtriage/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/ogtriage/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/ogtriage/internal/triage"
	"github.com/akolanti/ogtriage/internal/websearch/tavily"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

type Clients struct {
	Settings *config.Settings
	Store    rag.Store
	Chunker  *ingest.Chunker
	// LLM is nil unless agents were requested.
	LLM llm.Provider
	// Web stays a nil interface without a Tavily key.
	Web agents.WebSearcher

	closers []func() error
}

// Open validates settings and then constructs clients. Missing credentials
// fail here, before anything touches the network.
func Open(ctx context.Context, s *config.Settings, withAgents bool) (*Clients, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if withAgents {
		if err := s.ValidateLLM(); err != nil {
			return nil, err
		}
	}
	log := logger_i.NewLogger("bootstrap")

	chunker, err := ingest.NewChunker(s.ChunkSize, s.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	c := &Clients{Settings: s, Chunker: chunker}

	vector, err := c.openVectorDB(s)
	if err != nil {
		return nil, err
	}
	embedder, err := openEmbedder(ctx, s)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = rag.NewService(vector, embedder, rag.WithCollection(s.Collection), rag.WithDefaultTopK(s.TopK))

	if withAgents {
		client, err := gemini.New(ctx, s.GeminiAPIKey, s.GeminiModel, customHttpClient.NewPooledClient(0))
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		c.LLM = client

		if s.WebSearchEnabled() {
			web, err := tavily.New(s.TavilyAPIKey, customHttpClient.NewPooledClient(config.WebSearchTimeout))
			if err != nil {
				c.Close()
				return nil, fmt.Errorf("creating tavily client: %w", err)
			}
			c.Web = web
		} else {
			log.Info("TAVILY_API_KEY not set, web search disabled")
		}
	}

	log.Info("Clients ready", "vectorBackend", s.VectorBackend, "embeddings", s.EmbeddingProvider, "agents", withAgents, "webSearch", c.Web != nil)
	return c, nil
}

func (c *Clients) openVectorDB(s *config.Settings) (vectorDB.DataProcessor, error) {
	if s.VectorBackend == config.VectorBackendMemory {
		return memoryDB.New(), nil
	}
	db, err := qdrantDB.New(qdrantDB.Options{
		Host:   s.QdrantHost,
		Port:   s.QdrantPort,
		APIKey: s.QdrantAPIKey,
		UseTLS: s.QdrantUseTLS,
	})
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, db.Close)
	return db, nil
}

func openEmbedder(ctx context.Context, s *config.Settings) (embedding.Embedder, error) {
	httpClient := customHttpClient.NewPooledClient(0)
	switch s.EmbeddingProvider {
	case config.EmbeddingProviderGoogle:
		return googleEmbedding.New(ctx, s.GeminiAPIKey, config.GoogleEmbeddingModel, httpClient)
	default:
		return openaiEmbedding.New(s.OpenAIAPIKey, config.OpenAIEmbeddingModel, httpClient)
	}
}

// Triage assembles the agent pipeline. Open must have been called with agents.
func (c *Clients) Triage() (triage.Assembly, error) {
	if c.LLM == nil {
		return triage.Assembly{}, errors.New("agents were not initialised")
	}
	return triage.Build(triage.Deps{
		LLM:      c.LLM,
		Store:    c.Store,
		Web:      c.Web,
		Chunker:  c.Chunker,
		TopK:     c.Settings.TopK,
		MaxSteps: config.SupervisorMaxSteps,
		Timeout:  config.TriageTimeout,
	}), nil
}

func (c *Clients) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		errs = append(errs, closeFn())
	}
	c.closers = nil
	return errors.Join(errs...)
}
