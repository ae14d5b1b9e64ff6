package agents

import (
	"context"
	"strings"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/rag/llm"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

const passageSnippet = 400

type Retriever struct {
	provider llm.Provider
	search   *RegulationSearch
	maxCalls int
	logger   *logger_i.Logger
}

func NewRetriever(provider llm.Provider, search *RegulationSearch, maxCalls int) *Retriever {
	if maxCalls <= 0 {
		maxCalls = config.AgentMaxToolCalls
	}
	return &Retriever{
		provider: provider,
		search:   search,
		maxCalls: maxCalls,
		logger:   logger_i.NewLogger("agent").With("agent", agentModel.RetrieverAgent),
	}
}

func (r *Retriever) Name() agentModel.AgentName { return agentModel.RetrieverAgent }

func (r *Retriever) Run(ctx context.Context, state *agentModel.State) (agentModel.Turn, error) {
	log := r.logger.WithTrace(ctx)
	turn := agentModel.Turn{Agent: r.Name()}

	collector := &passageCollector{search: r.search}
	history := append(transcript(state.Conversation), agentModel.UserMessage(retrieverTask))
	loop, err := runToolLoop(ctx, r.provider, r.Name(), retrieverPrompt, history, NewRegistry(collector), r.maxCalls, log)
	if err != nil {
		return turn, err
	}

	turn.Messages = loop.Messages
	if len(collector.passages) == 0 {
		log.Info("No regulatory passages retrieved", "toolCalls", loop.Calls)
		turn.Messages = append(turn.Messages, agentModel.AssistantMessage(r.Name(), InsufficientRetrieval))
		return turn, nil
	}

	turn.Passages = collector.passages
	turn.Messages = append(turn.Messages, agentModel.AssistantMessage(r.Name(), summarizePassages(loop.Text, collector.passages)))
	log.Info("Regulatory passages retrieved", "passages", len(collector.passages), "toolCalls", loop.Calls)
	return turn, nil
}

// summarizePassages always lists the real citations so the summary cannot
// reference passages that were never retrieved.
func summarizePassages(modelText string, passages []commonModels.SearchResult) string {
	var b strings.Builder
	if t := strings.TrimSpace(modelText); t != "" {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	b.WriteString("Retrieved regulatory passages:\n")
	b.WriteString(passagesBlock(passages, passageSnippet))
	return b.String()
}

// passageCollector is match_regulations for one turn, keeping every passage it returned.
type passageCollector struct {
	search   *RegulationSearch
	passages []commonModels.SearchResult
	seen     map[string]bool
}

func (p *passageCollector) Spec() agentModel.ToolSpec { return p.search.Spec() }

func (p *passageCollector) Call(ctx context.Context, args map[string]any) (string, error) {
	res, err := p.search.Search(ctx, stringArg(args, "query"), intArg(args, "match_count", p.search.defaultCount))
	if err != nil {
		return "", err
	}
	if p.seen == nil {
		p.seen = make(map[string]bool)
	}
	for _, r := range res {
		key := r.Citation()
		if p.seen[key] {
			continue
		}
		p.seen[key] = true
		p.passages = append(p.passages, r)
	}
	return RegulationRows(res)
}
