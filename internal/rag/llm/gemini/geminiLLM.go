package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/rag/llm"
	"github.com/akolanti/ogtriage/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

type Client struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func New(ctx context.Context, apiKey string, modelName string, httpClient *http.Client) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	log := logger_i.NewLogger("llm_gemini")
	log.Info("Gemini client created", "model", modelName)
	return &Client{client: c, modelName: modelName, logger: log}, nil
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	log := c.logger.WithTrace(ctx)

	temperature := config.ModelTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if req.System != "" {
		contentConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if len(req.Tools) > 0 {
		contentConfig.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(req.Tools)}}
	}
	if req.ResponseSchema != nil {
		contentConfig.ResponseMIMEType = "application/json"
		contentConfig.ResponseSchema = toSchema(req.ResponseSchema)
	}

	callCtx, cancel := context.WithTimeout(ctx, config.LLMCallTimeout)
	defer cancel()
	result, err := c.client.Models.GenerateContent(callCtx, c.modelName, toContents(req.Messages), contentConfig)
	if err != nil {
		log.Error("Gemini generate failed", "error", err)
		return llm.Response{}, fmt.Errorf("gemini generate: %w", err)
	}
	resp := fromResult(result)
	log.Debug("Gemini responded", "toolCalls", len(resp.ToolCalls), "chars", len(resp.Text))
	return resp, nil
}

func toContents(messages []agentModel.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case agentModel.RoleUser:
			contents = append(contents, &genai.Content{Role: roleUser, Parts: []*genai.Part{{Text: m.Content}}})
		case agentModel.RoleAssistant:
			content := &genai.Content{Role: roleModel}
			if m.Content != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				content.Parts = append(content.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Name,
					Args: tc.Args,
				}})
			}
			if len(content.Parts) > 0 {
				contents = append(contents, content)
			}
		case agentModel.RoleTool:
			contents = append(contents, &genai.Content{Role: roleUser, Parts: []*genai.Part{{
				FunctionResponse: &genai.FunctionResponse{
					ID:       m.ToolCallID,
					Name:     m.ToolName,
					Response: map[string]any{"output": m.Content},
				},
			}}})
		}
	}
	return contents
}

func fromResult(result *genai.GenerateContentResponse) llm.Response {
	var resp llm.Response
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return resp
	}
	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			resp.ToolCalls = append(resp.ToolCalls, agentModel.ToolCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	resp.Text = text.String()
	return resp
}

func toDeclarations(tools []agentModel.ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toSchema(t.Parameters),
		})
	}
	return decls
}

func toSchema(s *agentModel.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        toType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
		Items:       toSchema(s.Items),
	}
	if s.Enum != nil {
		out.Format = "enum"
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			out.Properties[k] = toSchema(v)
		}
	}
	return out
}

func toType(t agentModel.SchemaType) genai.Type {
	switch t {
	case agentModel.TypeObject:
		return genai.TypeObject
	case agentModel.TypeInteger:
		return genai.TypeInteger
	case agentModel.TypeBoolean:
		return genai.TypeBoolean
	case agentModel.TypeArray:
		return genai.TypeArray
	default:
		return genai.TypeString
	}
}
