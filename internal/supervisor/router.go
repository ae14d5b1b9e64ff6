package supervisor

import (
	"context"
	"fmt"

	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

type Phase int

const (
	PhaseStart Phase = iota
	PhaseRetrieving
	PhaseAnalyzing
	PhaseReporting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "Start"
	case PhaseRetrieving:
		return "Retrieving"
	case PhaseAnalyzing:
		return "Analyzing"
	case PhaseReporting:
		return "Reporting"
	case PhaseDone:
		return "Done"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// PhaseOf derives the phase from what the state already holds.
func PhaseOf(state *agentModel.State) Phase {
	switch {
	case state.Report != "":
		return PhaseDone
	case state.GapsReady:
		return PhaseReporting
	case state.Ran(agentModel.RetrieverAgent):
		return PhaseAnalyzing
	case len(state.Steps) > 0:
		return PhaseRetrieving
	default:
		return PhaseStart
	}
}

type ActionKind int

const (
	ActionInvoke ActionKind = iota
	ActionFinish
)

type Action struct {
	Kind  ActionKind
	Agent agentModel.AgentName
}

func Invoke(agent agentModel.AgentName) Action {
	return Action{Kind: ActionInvoke, Agent: agent}
}

func Finish() Action {
	return Action{Kind: ActionFinish}
}

func (a Action) String() string {
	if a.Kind == ActionFinish {
		return "finish"
	}
	return "invoke " + string(a.Agent)
}

type Router interface {
	Next(ctx context.Context, state *agentModel.State) (Action, error)
}

// Advisor is the model backed part of routing.
type Advisor interface {
	NeedsWebSearch(ctx context.Context, state *agentModel.State) (bool, error)
}

// StateMachineRouter runs retrieval, analysis and reporting in order. The
// advisor may insert one web search before analysis.
type StateMachineRouter struct {
	advisor Advisor
	logger  *logger_i.Logger
}

func NewStateMachineRouter(advisor Advisor) *StateMachineRouter {
	return &StateMachineRouter{advisor: advisor, logger: logger_i.NewLogger("router")}
}

func (r *StateMachineRouter) Next(ctx context.Context, state *agentModel.State) (Action, error) {
	switch PhaseOf(state) {
	case PhaseStart, PhaseRetrieving:
		return Invoke(agentModel.RetrieverAgent), nil
	case PhaseAnalyzing:
		if r.wantsWebSearch(ctx, state) {
			return Invoke(agentModel.WebSearchAgent), nil
		}
		return Invoke(agentModel.GapAnalyzerAgent), nil
	case PhaseReporting:
		return Invoke(agentModel.ReportAgent), nil
	default:
		return Finish(), nil
	}
}

func (r *StateMachineRouter) wantsWebSearch(ctx context.Context, state *agentModel.State) bool {
	if r.advisor == nil || state.Ran(agentModel.WebSearchAgent) {
		return false
	}
	ok, err := r.advisor.NeedsWebSearch(ctx, state)
	if err != nil {
		r.logger.WithTrace(ctx).Warn("Advisor failed, continuing without web search", "error", err)
		return false
	}
	return ok
}
