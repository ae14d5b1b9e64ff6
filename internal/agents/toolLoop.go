package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/rag/llm"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

var errToolBudget = errors.New("tool call limit reached, answer with the information gathered so far")

type loopResult struct {
	Text string
	// Messages holds the tool call and tool result exchange, oldest first.
	Messages []agentModel.Message
	Calls    int
}

// runToolLoop lets the model call tools at most maxCalls times, then asks
// once more without tools. Tool failures go back to the model as an error
// payload, except ErrRegulationSearch which ends the loop like a provider error.
func runToolLoop(ctx context.Context, provider llm.Provider, agent agentModel.AgentName, system string,
	history []agentModel.Message, registry *Registry, maxCalls int, log *logger_i.Logger) (loopResult, error) {

	var res loopResult
	msgs := append([]agentModel.Message(nil), history...)

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		req := llm.Request{System: system, Messages: msgs}
		toolsOffered := res.Calls < maxCalls && registry != nil && len(registry.order) > 0
		if toolsOffered {
			req.Tools = registry.Specs()
		}

		resp, err := generate(ctx, provider, agent, req)
		if err != nil {
			return res, err
		}
		if len(resp.ToolCalls) == 0 || !toolsOffered {
			res.Text = resp.Text
			return res, nil
		}

		callMsg := agentModel.Message{Role: agentModel.RoleAssistant, Name: agent, Content: resp.Text}
		var results []agentModel.Message
		for i, tc := range resp.ToolCalls {
			if tc.ID == "" {
				tc.ID = fmt.Sprintf("call_%d_%d", res.Calls, i)
			}
			callMsg.ToolCalls = append(callMsg.ToolCalls, tc)

			var output string
			if res.Calls >= maxCalls {
				output = errorPayload(errToolBudget)
			} else {
				res.Calls++
				output, err = invokeTool(ctx, registry, tc, log)
				if err != nil {
					return res, err
				}
			}
			results = append(results, agentModel.Message{
				Role:       agentModel.RoleTool,
				Name:       agent,
				Content:    output,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
			})
		}
		msgs = append(msgs, callMsg)
		msgs = append(msgs, results...)
		res.Messages = append(res.Messages, callMsg)
		res.Messages = append(res.Messages, results...)
	}
}

func invokeTool(ctx context.Context, registry *Registry, tc agentModel.ToolCall, log *logger_i.Logger) (string, error) {
	tool, ok := registry.Get(tc.Name)
	if !ok {
		log.Warn("Model called unknown tool", "tool", tc.Name)
		return errorPayload(fmt.Errorf("unknown tool %q", tc.Name)), nil
	}
	out, err := tool.Call(ctx, tc.Args)
	if err != nil {
		if errors.Is(err, ErrRegulationSearch) {
			log.Error("Regulation search failed", "tool", tc.Name, "error", err)
			return "", err
		}
		log.Warn("Tool call failed", "tool", tc.Name, "error", err)
		return errorPayload(err), nil
	}
	return out, nil
}

func errorPayload(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}
