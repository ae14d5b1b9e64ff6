package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
)

const (
	MatchRegulationsTool = "match_regulations"
	WebSearchTool        = "web_search"
)

type Tool interface {
	Spec() agentModel.ToolSpec
	Call(ctx context.Context, args map[string]any) (string, error)
}

// Registry is the fixed tool set of one agent turn, in declaration order.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Spec().Name
		if _, dup := r.tools[name]; !dup {
			r.order = append(r.order, name)
		}
		r.tools[name] = t
	}
	return r
}

func (r *Registry) Specs() []agentModel.ToolSpec {
	out := make([]agentModel.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Spec())
	}
	return out
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// RegulationRow is the JSON shape match_regulations returns to the model.
type RegulationRow struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	ChunkIndex int     `json:"chunk_index"`
	Citation   string  `json:"citation"`
	Similarity float32 `json:"similarity"`
}

// RegulationSearch searches the regulations corpus only.
type RegulationSearch struct {
	store        Searcher
	defaultCount int
}

func NewRegulationSearch(store Searcher, defaultCount int) *RegulationSearch {
	if defaultCount <= 0 {
		defaultCount = config.DefaultTopK
	}
	return &RegulationSearch{store: store, defaultCount: defaultCount}
}

func (t *RegulationSearch) Spec() agentModel.ToolSpec {
	return agentModel.ToolSpec{
		Name:        MatchRegulationsTool,
		Description: "Semantic search over the Oil & Gas regulations corpus. Returns JSON rows with content, source and citation.",
		Parameters: &agentModel.Schema{
			Type: agentModel.TypeObject,
			Properties: map[string]*agentModel.Schema{
				"query":       {Type: agentModel.TypeString, Description: "What to look for in the regulations."},
				"match_count": {Type: agentModel.TypeInteger, Description: "Number of passages to return, default 5."},
			},
			Required: []string{"query"},
		},
	}
}

func (t *RegulationSearch) Search(ctx context.Context, query string, matchCount int) ([]commonModels.SearchResult, error) {
	if matchCount <= 0 {
		matchCount = t.defaultCount
	}
	res, err := t.store.Search(ctx, query, commonModels.CorpusRegulations, matchCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegulationSearch, err)
	}
	return res, nil
}

func (t *RegulationSearch) Call(ctx context.Context, args map[string]any) (string, error) {
	res, err := t.Search(ctx, stringArg(args, "query"), intArg(args, "match_count", t.defaultCount))
	if err != nil {
		return "", err
	}
	return RegulationRows(res)
}

func RegulationRows(res []commonModels.SearchResult) (string, error) {
	rows := make([]RegulationRow, 0, len(res))
	for _, r := range res {
		rows = append(rows, RegulationRow{
			Content:    r.Content,
			Source:     r.SourceName,
			ChunkIndex: r.ChunkIndex,
			Citation:   r.Citation(),
			Similarity: r.Similarity,
		})
	}
	b, err := json.Marshal(rows)
	return string(b), err
}

// PublicWebSearch wraps the search client. A nil client makes the tool unavailable.
type PublicWebSearch struct {
	client WebSearcher
}

func NewPublicWebSearch(client WebSearcher) *PublicWebSearch {
	return &PublicWebSearch{client: client}
}

func (t *PublicWebSearch) Available() bool {
	return t != nil && t.client != nil
}

func (t *PublicWebSearch) Spec() agentModel.ToolSpec {
	return agentModel.ToolSpec{
		Name:        WebSearchTool,
		Description: "Public web search. Returns JSON results with title, url and content.",
		Parameters: &agentModel.Schema{
			Type: agentModel.TypeObject,
			Properties: map[string]*agentModel.Schema{
				"query":       {Type: agentModel.TypeString, Description: "Search query."},
				"max_results": {Type: agentModel.TypeInteger, Description: "Maximum results, default 5."},
			},
			Required: []string{"query"},
		},
	}
}

func (t *PublicWebSearch) Call(ctx context.Context, args map[string]any) (string, error) {
	if !t.Available() {
		return "", fmt.Errorf("%s: %w", WebSearchTool, ErrToolUnavailable)
	}
	res, err := t.client.Search(ctx, stringArg(args, "query"), intArg(args, "max_results", config.WebSearchDefaultResults))
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(res)
	return string(b), err
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// intArg accepts the number encodings model providers produce.
func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case float32:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
