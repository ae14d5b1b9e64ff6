package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/metrics"
	"github.com/akolanti/ogtriage/internal/rag/llm"
	"github.com/akolanti/ogtriage/internal/websearch/tavily"
)

// ErrToolUnavailable is returned by a tool whose backing service is not configured.
var ErrToolUnavailable = errors.New("tool unavailable")

// ErrRegulationSearch marks a failed regulations lookup. It ends the agent
// turn instead of going back to the model.
var ErrRegulationSearch = errors.New("regulation search failed")

// Agent is one capability the supervisor can hand the conversation to.
// Run must not mutate state; it returns what it adds as a Turn.
type Agent interface {
	Name() agentModel.AgentName
	Run(ctx context.Context, state *agentModel.State) (agentModel.Turn, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, corpus commonModels.CorpusTag, topK int) ([]commonModels.SearchResult, error)
}

type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]tavily.Result, error)
}

func generate(ctx context.Context, provider llm.Provider, agent agentModel.AgentName, req llm.Request) (llm.Response, error) {
	start := time.Now()
	resp, err := provider.Generate(ctx, req)
	metrics.CaptureExecutionMetrics("llm_"+string(agent), time.Since(start))
	if err != nil {
		return llm.Response{}, fmt.Errorf("%s inference: %w", agent, err)
	}
	return resp, nil
}

// transcript flattens the shared conversation into what a single agent sends
// to its model. Other agents' tool exchanges become plain context text.
func transcript(conv *agentModel.Conversation) []agentModel.Message {
	var out []agentModel.Message
	for _, m := range conv.Messages() {
		switch {
		case m.Role == agentModel.RoleUser:
			out = append(out, m)
		case m.Role == agentModel.RoleAssistant && len(m.ToolCalls) == 0 && m.Content != "":
			out = append(out, agentModel.UserMessage(fmt.Sprintf("[%s]\n%s", m.Name, m.Content)))
		case m.Role == agentModel.RoleTool && m.Content != "":
			out = append(out, agentModel.UserMessage(fmt.Sprintf("[%s used %s]\n%s", m.Name, m.ToolName, m.Content)))
		}
	}
	return out
}

// ParseYesNo reads a Yes/No style answer. Anything but a leading yes is false.
func ParseYesNo(answer string) bool {
	s := strings.TrimLeftFunc(strings.ToLower(answer), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	return strings.HasPrefix(s, "yes")
}

// extractJSON drops markdown fences and chatter around a JSON object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(text)
	}
	return text[start : end+1]
}

func excerptBlock(state *agentModel.State) string {
	return strings.TrimSpace(state.Conversation.UserContent())
}

func passagesBlock(passages []commonModels.SearchResult, limit int) string {
	var b strings.Builder
	for _, p := range passages {
		content := strings.Join(strings.Fields(p.Content), " ")
		if limit > 0 && len([]rune(content)) > limit {
			content = string([]rune(content)[:limit]) + "..."
		}
		fmt.Fprintf(&b, "- %s %s\n", p.Citation(), content)
	}
	return strings.TrimRight(b.String(), "\n")
}
