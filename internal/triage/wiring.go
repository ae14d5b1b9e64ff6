package triage

import (
	"time"

	"github.com/akolanti/ogtriage/internal/agents"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/rag"
	"github.com/akolanti/ogtriage/internal/rag/ingest"
	"github.com/akolanti/ogtriage/internal/rag/llm"
	"github.com/akolanti/ogtriage/internal/supervisor"
)

// Deps are the process wide clients a pipeline is assembled from.
// Web may be nil; web search then degrades to a fixed message.
type Deps struct {
	LLM      llm.Provider
	Store    rag.Store
	Web      agents.WebSearcher
	Chunker  *ingest.Chunker
	TopK     int
	MaxSteps int
	Timeout  time.Duration
}

// Assembly is a wired pipeline plus the pieces other surfaces reuse.
type Assembly struct {
	Pipeline   *Pipeline
	Classifier *agents.Classifier
	Search     *agents.RegulationSearch
	Supervisor *supervisor.Supervisor
}

func Build(d Deps) Assembly {
	maxSteps := d.MaxSteps
	if maxSteps <= 0 {
		maxSteps = config.SupervisorMaxSteps
	}
	search := agents.NewRegulationSearch(d.Store, d.TopK)
	web := agents.NewPublicWebSearch(d.Web)
	classifier := agents.NewClassifier(d.LLM, config.ClassifierInputLimit)

	members := []agents.Agent{
		agents.NewRetriever(d.LLM, search, config.AgentMaxToolCalls),
		agents.NewWebResearcher(d.LLM, web, config.AgentMaxToolCalls),
		agents.NewGapAnalyzer(d.LLM),
		agents.NewReporter(d.LLM),
	}
	router := supervisor.NewStateMachineRouter(agents.NewWebSearchAdvisor(d.LLM, web))
	sup := supervisor.New(router, members, supervisor.WithMaxSteps(maxSteps))

	return Assembly{
		Pipeline:   NewPipeline(classifier, d.Chunker, d.Store, sup, d.Timeout),
		Classifier: classifier,
		Search:     search,
		Supervisor: sup,
	}
}
