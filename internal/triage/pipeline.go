package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/ogtriage/internal/adapter/utils"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/agentModel"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/internal/metrics"
	"github.com/akolanti/ogtriage/internal/rag/ingest"
	"github.com/akolanti/ogtriage/internal/supervisor"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

type Classifier interface {
	Classify(ctx context.Context, text string) (commonModels.Relevance, error)
}

type Runner interface {
	Run(ctx context.Context, conv *agentModel.Conversation) (supervisor.Result, error)
}

type Result struct {
	DocumentName string                       `json:"document_name"`
	Relevance    commonModels.Relevance       `json:"relevance"`
	ChunksStored int                          `json:"chunks_stored"`
	Gaps         []commonModels.ComplianceGap `json:"gaps"`
	Report       string                       `json:"report,omitempty"`
	Outcome      jobModel.TriageOutcome       `json:"outcome"`
	Steps        []string                     `json:"steps,omitempty"`
	Error        string                       `json:"error,omitempty"`
}

// StepFunc is told which stage a run entered. Used to surface job progress.
type StepFunc func(step jobModel.InternalStatus)

type Pipeline struct {
	classifier   Classifier
	chunker      *ingest.Chunker
	store        ingest.Upserter
	supervisor   Runner
	timeout      time.Duration
	excerptLimit int
	logger       *logger_i.Logger
}

func NewPipeline(classifier Classifier, chunker *ingest.Chunker, store ingest.Upserter, runner Runner, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = config.TriageTimeout
	}
	return &Pipeline{
		classifier:   classifier,
		chunker:      chunker,
		store:        store,
		supervisor:   runner,
		timeout:      timeout,
		excerptLimit: config.ExcerptLimit,
		logger:       logger_i.NewLogger("triage"),
	}
}

func (p *Pipeline) Classify(ctx context.Context, text string) (commonModels.Relevance, error) {
	return p.classifier.Classify(ctx, text)
}

func (p *Pipeline) Triage(ctx context.Context, doc commonModels.Document) (Result, error) {
	return p.TriageWithProgress(ctx, doc, nil)
}

// TriageWithProgress classifies, stores and analyses one uploaded document.
// Classification and storage errors are returned without an outcome. An
// analysis error returns both the ANALYSIS_FAILED result and the error.
func (p *Pipeline) TriageWithProgress(ctx context.Context, doc commonModels.Document, onStep StepFunc) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	log := p.logger.WithTrace(ctx).With("document", doc.Name)
	step := func(s jobModel.InternalStatus) {
		if onStep != nil {
			onStep(s)
		}
	}
	res := Result{DocumentName: doc.Name}

	if strings.TrimSpace(doc.Text) == "" {
		res.Relevance = commonModels.NotRelevant
		return p.finish(res, jobModel.OutcomeNoContent, log), nil
	}

	step(jobModel.ClassifyCall)
	relevance, err := p.classifier.Classify(ctx, doc.Text)
	if err != nil {
		return res, fmt.Errorf("classifying %s: %w", doc.Name, err)
	}
	res.Relevance = relevance
	if relevance != commonModels.Relevant {
		return p.finish(res, jobModel.OutcomeNotRelevant, log), nil
	}

	step(jobModel.IngestCall)
	stored, err := ingest.IngestDocument(ctx, doc, commonModels.CorpusUploads, p.chunker, p.store)
	if err != nil {
		if errors.Is(err, ingest.ErrNoContent) {
			return p.finish(res, jobModel.OutcomeNoContent, log), nil
		}
		return res, err
	}
	res.ChunksStored = stored
	metrics.CaptureChunksUpserted(string(commonModels.CorpusUploads), stored)

	step(jobModel.SupervisorCall)
	conv := agentModel.NewConversation(agentModel.UserMessage(p.excerpt(doc)))
	run, err := p.supervisor.Run(ctx, conv)
	res.Steps = run.Names()
	if err != nil {
		res.Error = err.Error()
		log.Error("Analysis failed", "error", err, "steps", res.Steps)
		return p.finish(res, jobModel.OutcomeAnalysisFailed, log), fmt.Errorf("analysing %s: %w", doc.Name, err)
	}

	res.Gaps = run.Gaps
	res.Report = run.Report
	if len(run.Gaps) > 0 {
		return p.finish(res, jobModel.OutcomeGapsFound, log), nil
	}
	return p.finish(res, jobModel.OutcomeNoGapsFound, log), nil
}

func (p *Pipeline) finish(res Result, outcome jobModel.TriageOutcome, log *logger_i.Logger) Result {
	res.Outcome = outcome
	if res.Gaps == nil {
		res.Gaps = []commonModels.ComplianceGap{}
	}
	metrics.CaptureTriageOutcome(string(outcome))
	log.Info("Triage finished", "outcome", outcome, "chunks", res.ChunksStored, "gaps", len(res.Gaps))
	return res
}

func (p *Pipeline) excerpt(doc commonModels.Document) string {
	return fmt.Sprintf("Document: %s\n\n%s", doc.Name, utils.Truncate(strings.TrimSpace(doc.Text), p.excerptLimit))
}
