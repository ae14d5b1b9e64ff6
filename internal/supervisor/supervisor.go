package supervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/ogtriage/internal/agents"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/metrics"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

var (
	ErrStepBudgetExhausted = errors.New("supervisor step budget exhausted")
	ErrUnknownAgent        = errors.New("unknown agent")
)

type Result struct {
	Conversation *agentModel.Conversation
	Passages     []commonModels.SearchResult
	Gaps         []commonModels.ComplianceGap
	Report       string
	Steps        []agentModel.AgentName
}

type Supervisor struct {
	router   Router
	agents   map[agentModel.AgentName]agents.Agent
	maxSteps int
	logger   *logger_i.Logger
}

type Option func(*Supervisor)

func WithMaxSteps(n int) Option {
	return func(s *Supervisor) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

func New(router Router, members []agents.Agent, opts ...Option) *Supervisor {
	s := &Supervisor{
		router:   router,
		agents:   make(map[agentModel.AgentName]agents.Agent, len(members)),
		maxSteps: config.SupervisorMaxSteps,
		logger:   logger_i.NewLogger("supervisor"),
	}
	for _, a := range members {
		s.agents[a.Name()] = a
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run drives the agents over conv until the router finishes. It invokes at
// most maxSteps agents; the partial result is returned alongside any error.
func (s *Supervisor) Run(ctx context.Context, conv *agentModel.Conversation) (Result, error) {
	log := s.logger.WithTrace(ctx)
	state := agentModel.NewState(conv)

	for {
		if err := ctx.Err(); err != nil {
			return resultOf(state), err
		}
		action, err := s.router.Next(ctx, state)
		if err != nil {
			return resultOf(state), fmt.Errorf("routing after %d steps: %w", len(state.Steps), err)
		}
		if action.Kind == ActionFinish {
			log.Info("Supervisor finished", "steps", len(state.Steps))
			return resultOf(state), nil
		}
		if len(state.Steps) >= s.maxSteps {
			log.Warn("Step budget exhausted", "maxSteps", s.maxSteps, "next", action.Agent)
			return resultOf(state), fmt.Errorf("%w: %d steps", ErrStepBudgetExhausted, s.maxSteps)
		}
		agent, ok := s.agents[action.Agent]
		if !ok {
			return resultOf(state), fmt.Errorf("%w: %s", ErrUnknownAgent, action.Agent)
		}

		log.Debug("Invoking agent", "agent", action.Agent, "phase", PhaseOf(state), "step", len(state.Steps)+1)
		start := time.Now()
		turn, err := agent.Run(ctx, state)
		metrics.CaptureExecutionMetrics("agent_"+string(action.Agent), time.Since(start))
		metrics.CaptureAgentStep(string(action.Agent), err)
		if err != nil {
			log.Error("Agent failed", "agent", action.Agent, "error", err)
			return resultOf(state), fmt.Errorf("%s: %w", action.Agent, err)
		}
		turn.Agent = agent.Name()
		state.Apply(turn)
	}
}

func resultOf(state *agentModel.State) Result {
	return Result{
		Conversation: state.Conversation,
		Passages:     state.Passages,
		Gaps:         state.Gaps,
		Report:       state.Report,
		Steps:        state.Steps,
	}
}

// Names renders the step trace for job payloads.
func (r Result) Names() []string {
	out := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = string(s)
	}
	return out
}
