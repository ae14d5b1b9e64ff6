package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/akolanti/ogtriage/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Client struct {
	api    openai.Client
	model  string
	logger *logger_i.Logger
}

// New builds the OpenAI embedder. SDK retries are disabled; callers own retry policy.
func New(apiKey string, model string, httpClient *http.Client, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai embedding: empty api key")
	}
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		base = append(base, option.WithHTTPClient(httpClient))
	}
	return &Client{
		api:    openai.NewClient(append(base, opts...)...),
		model:  model,
		logger: logger_i.NewLogger("openai_embedding"),
	}, nil
}

func (c *Client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	res, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func (c *Client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := c.logger.WithTrace(ctx)
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: chunks},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		log.Error("Error getting embeddings from OpenAI", "error", err, "batch", len(chunks))
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(chunks) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(chunks))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	out := make([][]float32, len(data))
	for i, d := range data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	log.Debug("OpenAI embeddings received", "count", len(out))
	return out, nil
}
