package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akolanti/ogtriage/internal/adapter/utils"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/rag/llm"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

var gapSchema = &agentModel.Schema{
	Type: agentModel.TypeObject,
	Properties: map[string]*agentModel.Schema{
		"gaps": {
			Type: agentModel.TypeArray,
			Items: &agentModel.Schema{
				Type: agentModel.TypeObject,
				Properties: map[string]*agentModel.Schema{
					"title":     {Type: agentModel.TypeString},
					"citation":  {Type: agentModel.TypeString, Description: "Regulation reference from the context, empty if none."},
					"severity":  {Type: agentModel.TypeString, Enum: commonModels.AllSeverities},
					"rationale": {Type: agentModel.TypeString},
				},
				Required: []string{"title", "citation", "severity", "rationale"},
			},
		},
		"insufficient": {Type: agentModel.TypeBoolean},
	},
	Required: []string{"gaps", "insufficient"},
}

type gapOutput struct {
	Gaps []struct {
		Title     string `json:"title"`
		Citation  string `json:"citation"`
		Severity  string `json:"severity"`
		Rationale string `json:"rationale"`
	} `json:"gaps"`
	Insufficient bool `json:"insufficient"`
}

// GapAnalyzer reasons over what is already in the state. It never gets tools.
type GapAnalyzer struct {
	provider llm.Provider
	logger   *logger_i.Logger
}

func NewGapAnalyzer(provider llm.Provider) *GapAnalyzer {
	return &GapAnalyzer{
		provider: provider,
		logger:   logger_i.NewLogger("agent").With("agent", agentModel.GapAnalyzerAgent),
	}
}

func (g *GapAnalyzer) Name() agentModel.AgentName { return agentModel.GapAnalyzerAgent }

func (g *GapAnalyzer) Run(ctx context.Context, state *agentModel.State) (agentModel.Turn, error) {
	log := g.logger.WithTrace(ctx)
	turn := agentModel.Turn{Agent: g.Name(), GapsReady: true}

	excerpts := excerptBlock(state)
	if excerpts == "" && len(state.Passages) == 0 {
		log.Info("Nothing to analyze")
		turn.Insufficient = true
		turn.Messages = []agentModel.Message{agentModel.AssistantMessage(g.Name(), InsufficientAnalysis)}
		return turn, nil
	}

	resp, err := generate(ctx, g.provider, g.Name(), llm.Request{
		System:         gapAnalyzerPrompt,
		Messages:       []agentModel.Message{agentModel.UserMessage(analysisContext(state, excerpts))},
		ResponseSchema: gapSchema,
	})
	if err != nil {
		return agentModel.Turn{Agent: g.Name()}, err
	}

	gaps, insufficient, err := ParseGaps(resp.Text)
	if err != nil {
		return agentModel.Turn{Agent: g.Name()}, err
	}

	turn.Gaps = gaps
	turn.Insufficient = insufficient && len(gaps) == 0
	turn.Messages = []agentModel.Message{agentModel.AssistantMessage(g.Name(), renderGapList(gaps, insufficient))}
	log.Info("Gap analysis finished", "gaps", len(gaps), "insufficient", insufficient)
	return turn, nil
}

// ParseGaps decodes the structured analyzer output. A severity outside
// Low/Medium/High fails the whole analysis.
func ParseGaps(text string) ([]commonModels.ComplianceGap, bool, error) {
	var out gapOutput
	if err := json.Unmarshal([]byte(extractJSON(text)), &out); err != nil {
		return nil, false, fmt.Errorf("decoding gap analysis: %w", err)
	}
	gaps := make([]commonModels.ComplianceGap, 0, len(out.Gaps))
	for i, raw := range out.Gaps {
		sev, err := commonModels.ParseSeverity(raw.Severity)
		if err != nil {
			return nil, false, fmt.Errorf("gap %d: %w", i, err)
		}
		gaps = append(gaps, commonModels.ComplianceGap{
			Title:     strings.TrimSpace(raw.Title),
			Citation:  strings.TrimSpace(raw.Citation),
			Severity:  sev,
			Rationale: strings.TrimSpace(raw.Rationale),
		})
	}
	return gaps, out.Insufficient, nil
}

func analysisContext(state *agentModel.State, excerpts string) string {
	var b strings.Builder
	b.WriteString("Document excerpts:\n")
	if excerpts == "" {
		b.WriteString("(none)")
	} else {
		b.WriteString(utils.Truncate(excerpts, config.ExcerptLimit))
	}
	b.WriteString("\n\nRegulatory passages:\n")
	if len(state.Passages) == 0 {
		b.WriteString("(none)")
	} else {
		b.WriteString(passagesBlock(state.Passages, 0))
	}
	if web, ok := state.Conversation.LastFrom(agentModel.WebSearchAgent); ok && web.Content != NoExternalContext {
		b.WriteString("\n\nExternal context:\n")
		b.WriteString(web.Content)
	}
	return b.String()
}

func renderGapList(gaps []commonModels.ComplianceGap, insufficient bool) string {
	if len(gaps) == 0 {
		if insufficient {
			return InsufficientAnalysis
		}
		return "No compliance gaps identified."
	}
	var b strings.Builder
	for _, g := range gaps {
		fmt.Fprintf(&b, "- [%s] %s", g.Severity, g.Title)
		if g.Citation != "" {
			fmt.Fprintf(&b, " (%s)", g.Citation)
		}
		if g.Rationale != "" {
			fmt.Fprintf(&b, ": %s", g.Rationale)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
