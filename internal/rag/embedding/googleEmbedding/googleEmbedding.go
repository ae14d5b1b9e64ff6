package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/pkg/logger_i"
	"google.golang.org/genai"
)

const taskTypeDocument = "RETRIEVAL_DOCUMENT"
const taskTypeQuery = "RETRIEVAL_QUERY"

type Client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func New(ctx context.Context, apiKey string, modelName string, httpClient *http.Client) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("google embedding: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}
	log := logger_i.NewLogger("google_embedding")
	log.Info("Google Embedding client created", "model", modelName)
	return &Client{
		genAi:     c,
		model:     modelName,
		dimension: config.EmbeddingOutputDimensionality,
		logger:    log,
	}, nil
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

func (c *Client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	res, err := c.embed(ctx, getContent([]string{query}), taskTypeQuery)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

func (c *Client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}
	return c.embed(ctx, getContent(chunks), taskTypeDocument)
}

func (c *Client) embed(ctx context.Context, content []*genai.Content, taskType string) ([][]float32, error) {
	log := c.logger.WithTrace(ctx)
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             taskType,
	})
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, fmt.Errorf("google embeddings: %w", err)
	}
	if result == nil || len(result.Embeddings) != len(content) {
		return nil, fmt.Errorf("google embeddings: expected %d vectors", len(content))
	}

	out := make([][]float32, 0, len(result.Embeddings))
	for _, r := range result.Embeddings {
		if r == nil {
			return nil, errors.New("google embeddings: empty vector in response")
		}
		out = append(out, r.Values)
	}
	return out, nil
}
