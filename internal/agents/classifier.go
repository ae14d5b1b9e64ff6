package agents

import (
	"context"
	"strings"

	"github.com/akolanti/ogtriage/internal/adapter/utils"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/rag/llm"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

// Classifier is the relevance gate in front of ingestion. It is not part
// of the supervised flow.
type Classifier struct {
	provider   llm.Provider
	inputLimit int
	logger     *logger_i.Logger
}

func NewClassifier(provider llm.Provider, inputLimit int) *Classifier {
	if inputLimit <= 0 {
		inputLimit = config.ClassifierInputLimit
	}
	return &Classifier{
		provider:   provider,
		inputLimit: inputLimit,
		logger:     logger_i.NewLogger("agent").With("agent", agentModel.ClassifierAgent),
	}
}

// Classify fails closed: anything other than a yes is NotRelevant.
// Provider errors are returned as is.
func (c *Classifier) Classify(ctx context.Context, text string) (commonModels.Relevance, error) {
	log := c.logger.WithTrace(ctx)
	if strings.TrimSpace(text) == "" {
		return commonModels.NotRelevant, nil
	}

	var zero float32
	resp, err := generate(ctx, c.provider, agentModel.ClassifierAgent, llm.Request{
		System:      classifierPrompt,
		Messages:    []agentModel.Message{agentModel.UserMessage(utils.Truncate(text, c.inputLimit))},
		Temperature: &zero,
	})
	if err != nil {
		return "", err
	}

	relevance := ParseRelevance(resp.Text)
	log.Info("Document classified", "relevance", relevance, "raw", utils.Truncate(resp.Text, 20))
	return relevance, nil
}

func ParseRelevance(answer string) commonModels.Relevance {
	if ParseYesNo(answer) {
		return commonModels.Relevant
	}
	return commonModels.NotRelevant
}
