package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/metrics"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *logger_i.Logger
}

type Option func(*Client)

func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

func New(apiKey string, httpClient *http.Client, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("tavily: empty api key")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		apiKey:     apiKey,
		endpoint:   config.TavilySearchURL,
		httpClient: httpClient,
		logger:     logger_i.NewLogger("tavily"),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	log := c.logger.WithTrace(ctx)
	if maxResults <= 0 {
		maxResults = config.WebSearchDefaultResults
	}
	body, err := json.Marshal(searchRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, config.WebSearchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building tavily request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.CaptureExecutionMetrics("web_search", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Warn("Tavily returned non OK", "status", resp.StatusCode)
		return nil, fmt.Errorf("tavily search: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding tavily response: %w", err)
	}
	log.Debug("Tavily search done", "results", len(out.Results))
	return out.Results, nil
}
