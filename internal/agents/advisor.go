package agents

import (
	"context"

	"github.com/akolanti/ogtriage/internal/adapter/utils"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/rag/llm"
)

const advisorName agentModel.AgentName = "supervisor"

// WebSearchAdvisor asks the model whether public web context is worth a detour
// before gap analysis. It answers false without a call when search is off.
type WebSearchAdvisor struct {
	provider llm.Provider
	tool     *PublicWebSearch
}

func NewWebSearchAdvisor(provider llm.Provider, tool *PublicWebSearch) *WebSearchAdvisor {
	return &WebSearchAdvisor{provider: provider, tool: tool}
}

func (a *WebSearchAdvisor) NeedsWebSearch(ctx context.Context, state *agentModel.State) (bool, error) {
	if !a.tool.Available() {
		return false, nil
	}
	var zero float32
	msgs := append(transcript(state.Conversation), agentModel.UserMessage("Is public web context needed? Yes or No."))
	resp, err := generate(ctx, a.provider, advisorName, llm.Request{
		System:      advisorPrompt,
		Messages:    trimHistory(msgs, config.ExcerptLimit),
		Temperature: &zero,
	})
	if err != nil {
		return false, err
	}
	return ParseYesNo(resp.Text), nil
}

// trimHistory caps each message so routing calls stay small.
func trimHistory(msgs []agentModel.Message, limit int) []agentModel.Message {
	out := make([]agentModel.Message, len(msgs))
	for i, m := range msgs {
		m.Content = utils.Truncate(m.Content, limit)
		out[i] = m
	}
	return out
}
