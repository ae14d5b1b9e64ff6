package llm

import (
	"context"

	"github.com/akolanti/ogtriage/internal/domain/agentModel"
)

// Request is one inference call. Tools and ResponseSchema are optional;
// a provider must not return tool calls when Tools is empty.
type Request struct {
	System         string
	Messages       []agentModel.Message
	Tools          []agentModel.ToolSpec
	ResponseSchema *agentModel.Schema
	Temperature    *float32
}

type Response struct {
	Text      string
	ToolCalls []agentModel.ToolCall
}

type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
