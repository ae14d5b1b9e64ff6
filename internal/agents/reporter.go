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

const (
	minActions   = 2
	maxActions   = 3
	maxChecklist = 5
)

var checklistItemSchema = &agentModel.Schema{
	Type: agentModel.TypeObject,
	Properties: map[string]*agentModel.Schema{
		"category": {Type: agentModel.TypeString},
		"evidence": {Type: agentModel.TypeString},
		"citation": {Type: agentModel.TypeString},
	},
	Required: []string{"category", "evidence"},
}

var reportSchema = &agentModel.Schema{
	Type: agentModel.TypeObject,
	Properties: map[string]*agentModel.Schema{
		"executive_summary":    {Type: agentModel.TypeString, Description: "One paragraph."},
		"recommended_actions":  {Type: agentModel.TypeArray, Items: &agentModel.Schema{Type: agentModel.TypeString}},
		"compliance_checklist": {Type: agentModel.TypeArray, Items: checklistItemSchema, Description: "Only when no gaps were flagged."},
	},
	Required: []string{"executive_summary", "recommended_actions"},
}

// ChecklistItem is one category the document satisfies.
type ChecklistItem struct {
	Category string `json:"category"`
	Evidence string `json:"evidence"`
	Citation string `json:"citation,omitempty"`
}

type reportOutput struct {
	ExecutiveSummary    string          `json:"executive_summary"`
	RecommendedActions  []string        `json:"recommended_actions"`
	ComplianceChecklist []ChecklistItem `json:"compliance_checklist"`
}

// ReportContent is everything RenderReport lays out.
type ReportContent struct {
	Summary   string
	Gaps      []commonModels.ComplianceGap
	Actions   []string
	Checklist []ChecklistItem
	// Insufficient drops the compliance status; no verdict is given without context.
	Insufficient bool
}

type Reporter struct {
	provider llm.Provider
	logger   *logger_i.Logger
}

func NewReporter(provider llm.Provider) *Reporter {
	return &Reporter{
		provider: provider,
		logger:   logger_i.NewLogger("agent").With("agent", agentModel.ReportAgent),
	}
}

func (r *Reporter) Name() agentModel.AgentName { return agentModel.ReportAgent }

func (r *Reporter) Run(ctx context.Context, state *agentModel.State) (agentModel.Turn, error) {
	log := r.logger.WithTrace(ctx)
	turn := agentModel.Turn{Agent: r.Name()}

	resp, err := generate(ctx, r.provider, r.Name(), llm.Request{
		System:         reportPrompt,
		Messages:       []agentModel.Message{agentModel.UserMessage(reportContext(state))},
		ResponseSchema: reportSchema,
	})
	if err != nil {
		return turn, err
	}

	var out reportOutput
	if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &out); err != nil {
		return turn, fmt.Errorf("decoding report: %w", err)
	}

	turn.Report = RenderReport(ReportContent{
		Summary:      out.ExecutiveSummary,
		Gaps:         state.Gaps,
		Actions:      out.RecommendedActions,
		Checklist:    out.ComplianceChecklist,
		Insufficient: state.Insufficient,
	})
	turn.Messages = []agentModel.Message{agentModel.AssistantMessage(r.Name(), turn.Report)}
	log.Info("Report generated", "gaps", len(state.Gaps), "actions", len(out.RecommendedActions), "checklist", len(out.ComplianceChecklist))
	return turn, nil
}

// RenderReport lays out the final triage report. The same inputs always give the same text.
// A report without gaps carries a compliance status unless the analysis was insufficient.
func RenderReport(r ReportContent) string {
	var b strings.Builder
	b.WriteString("# Compliance Triage Report\n\n")

	b.WriteString("## Executive Summary\n\n")
	summary := strings.Join(strings.Fields(r.Summary), " ")
	if summary == "" {
		summary = defaultExecutiveSummary
	}
	b.WriteString(summary)
	b.WriteString("\n\n")

	if len(r.Gaps) == 0 && !r.Insufficient {
		writeComplianceStatus(&b, r.Checklist)
	}

	b.WriteString("## Flagged Gaps\n\n")
	if len(r.Gaps) == 0 {
		b.WriteString("None identified.\n")
	}
	for _, g := range r.Gaps {
		fmt.Fprintf(&b, "- **Severity**: %s | %s", strings.ToUpper(string(g.Severity)), g.Title)
		if g.Citation != "" {
			fmt.Fprintf(&b, " | %s", g.Citation)
		}
		if g.Rationale != "" {
			fmt.Fprintf(&b, " | %s", g.Rationale)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("## Recommended Next Actions\n\n")
	for i, a := range normalizeActions(r.Actions) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a)
	}
	return b.String()
}

func writeComplianceStatus(b *strings.Builder, checklist []ChecklistItem) {
	b.WriteString("## Compliance Status: COMPLIANT\n\n")
	listed := 0
	for _, c := range checklist {
		category := strings.TrimSpace(c.Category)
		if category == "" || listed == maxChecklist {
			continue
		}
		listed++
		fmt.Fprintf(b, "- [x] %s", category)
		if e := strings.TrimSpace(c.Evidence); e != "" {
			fmt.Fprintf(b, ": %s", e)
		}
		if cite := strings.TrimSpace(c.Citation); cite != "" {
			fmt.Fprintf(b, " (%s)", cite)
		}
		b.WriteString("\n")
	}
	if listed > 0 {
		b.WriteString("\n")
	}
	b.WriteString(noGapsNotice)
	b.WriteString("\n\n")
}

func normalizeActions(actions []string) []string {
	out := make([]string, 0, maxActions)
	for _, a := range actions {
		if a = strings.TrimSpace(a); a != "" && len(out) < maxActions {
			out = append(out, a)
		}
	}
	for _, d := range defaultActions {
		if len(out) >= minActions {
			break
		}
		out = append(out, d)
	}
	return out
}

func reportContext(state *agentModel.State) string {
	var b strings.Builder
	b.WriteString("Document excerpts:\n")
	b.WriteString(utils.Truncate(excerptBlock(state), config.ExcerptLimit))
	b.WriteString("\n\nFlagged gaps:\n")
	if len(state.Gaps) == 0 {
		b.WriteString("(none)")
	}
	for _, g := range state.Gaps {
		fmt.Fprintf(&b, "- [%s] %s %s: %s\n", g.Severity, g.Title, g.Citation, g.Rationale)
	}
	if msg, ok := state.Conversation.LastFrom(agentModel.GapAnalyzerAgent); ok && len(state.Gaps) == 0 {
		b.WriteString("\n\nAnalyst note:\n")
		b.WriteString(msg.Content)
	}
	return b.String()
}
