package mcpserver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
)

var errEmptyText = errors.New("text is required")

type MatchInput struct {
	Query      string `json:"query" jsonschema:"what to look for in the regulations corpus"`
	MatchCount int    `json:"match_count,omitempty" jsonschema:"number of passages to return (default 5)"`
}

type Passage struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
	Citation   string  `json:"citation"`
	Similarity float32 `json:"similarity"`
}

type MatchOutput struct {
	Passages []Passage `json:"passages"`
	Count    int       `json:"count"`
}

type ClassifyInput struct {
	Text string `json:"text" jsonschema:"document text to classify"`
}

type ClassifyOutput struct {
	Relevance string `json:"relevance"`
}

type TriageInput struct {
	Text         string `json:"text" jsonschema:"full document text"`
	DocumentName string `json:"document_name,omitempty" jsonschema:"name used for citations and the report"`
}

type Gap struct {
	Title     string `json:"title"`
	Citation  string `json:"citation"`
	Severity  string `json:"severity"`
	Rationale string `json:"rationale"`
}

type TriageOutput struct {
	DocumentName string   `json:"document_name"`
	Relevance    string   `json:"relevance"`
	Outcome      string   `json:"outcome"`
	ChunksStored int      `json:"chunks_stored"`
	Gaps         []Gap    `json:"gaps"`
	Report       string   `json:"report,omitempty"`
	Steps        []string `json:"steps,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "match_regulations",
		Description: "Semantic search over the ingested Oil & Gas regulations",
	}, s.handleMatch)

	if s.ports.Classifier != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "classify_document",
			Description: "Decide whether a text is relevant to Oil & Gas regulatory compliance",
		}, s.handleClassify)
	}
	if s.ports.Triager != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "triage_document",
			Description: "Classify a document, store it and produce a compliance gap report",
		}, s.handleTriage)
	}
}

func (s *Server) handleMatch(ctx context.Context, _ *mcp.CallToolRequest, input MatchInput) (*mcp.CallToolResult, MatchOutput, error) {
	count := input.MatchCount
	if count <= 0 {
		count = config.DefaultTopK
	}
	results, err := s.ports.Search.Search(ctx, input.Query, count)
	if err != nil {
		return nil, MatchOutput{}, err
	}

	out := MatchOutput{Passages: make([]Passage, len(results)), Count: len(results)}
	for i, r := range results {
		out.Passages[i] = Passage{
			Content:    r.Content,
			Source:     r.SourceName,
			ChunkIndex: r.ChunkIndex,
			Citation:   r.Citation(),
			Similarity: r.Similarity,
		}
	}
	return nil, out, nil
}

func (s *Server) handleClassify(ctx context.Context, _ *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, ClassifyOutput, error) {
	rel, err := s.ports.Classifier.Classify(ctx, input.Text)
	if err != nil {
		return nil, ClassifyOutput{}, err
	}
	return nil, ClassifyOutput{Relevance: string(rel)}, nil
}

// handleTriage reports a failed analysis as an outcome, not a tool error.
func (s *Server) handleTriage(ctx context.Context, _ *mcp.CallToolRequest, input TriageInput) (*mcp.CallToolResult, TriageOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, TriageOutput{}, errEmptyText
	}
	name := strings.TrimSpace(input.DocumentName)
	if name == "" {
		name = "mcp_document"
	}
	doc := commonModels.Document{
		Id:                  name,
		Name:                name,
		Text:                input.Text,
		ContentType:         commonModels.TXT,
		LastIngestTimestamp: time.Now(),
	}

	res, err := s.ports.Triager.Triage(ctx, doc)
	if err != nil && res.Outcome != jobModel.OutcomeAnalysisFailed {
		s.logger.WithTrace(ctx).Error("Triage failed", "document", name, "error", err)
		return nil, TriageOutput{}, err
	}

	out := TriageOutput{
		DocumentName: name,
		Relevance:    string(res.Relevance),
		Outcome:      string(res.Outcome),
		ChunksStored: res.ChunksStored,
		Gaps:         make([]Gap, 0, len(res.Gaps)),
		Report:       res.Report,
		Steps:        res.Steps,
		Error:        res.Error,
	}
	for _, g := range res.Gaps {
		out.Gaps = append(out.Gaps, Gap{
			Title:     g.Title,
			Citation:  g.Citation,
			Severity:  string(g.Severity),
			Rationale: g.Rationale,
		})
	}
	return nil, out, nil
}
