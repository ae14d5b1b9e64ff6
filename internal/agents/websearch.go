package agents

import (
	"context"
	"strings"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/rag/llm"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

type WebResearcher struct {
	provider llm.Provider
	tool     *PublicWebSearch
	maxCalls int
	logger   *logger_i.Logger
}

func NewWebResearcher(provider llm.Provider, tool *PublicWebSearch, maxCalls int) *WebResearcher {
	if maxCalls <= 0 {
		maxCalls = config.AgentMaxToolCalls
	}
	return &WebResearcher{
		provider: provider,
		tool:     tool,
		maxCalls: maxCalls,
		logger:   logger_i.NewLogger("agent").With("agent", agentModel.WebSearchAgent),
	}
}

func (w *WebResearcher) Name() agentModel.AgentName { return agentModel.WebSearchAgent }

// Run never fails the triage because search is unavailable; it says so instead.
func (w *WebResearcher) Run(ctx context.Context, state *agentModel.State) (agentModel.Turn, error) {
	log := w.logger.WithTrace(ctx)
	turn := agentModel.Turn{Agent: w.Name()}

	if !w.tool.Available() {
		log.Info("Web search not configured")
		turn.Messages = []agentModel.Message{agentModel.AssistantMessage(w.Name(), NoExternalContext)}
		return turn, nil
	}

	history := append(transcript(state.Conversation), agentModel.UserMessage(webSearchTask))
	loop, err := runToolLoop(ctx, w.provider, w.Name(), webSearchPrompt, history, NewRegistry(w.tool), w.maxCalls, log)
	if err != nil {
		return turn, err
	}

	text := strings.TrimSpace(loop.Text)
	if text == "" {
		text = NoExternalContext
	}
	turn.Messages = append(loop.Messages, agentModel.AssistantMessage(w.Name(), text))
	log.Info("Web context gathered", "toolCalls", loop.Calls)
	return turn, nil
}
