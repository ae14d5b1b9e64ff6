package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/internal/metrics"
	"github.com/akolanti/ogtriage/internal/rag/ingest"
	"github.com/akolanti/ogtriage/internal/triage"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

func (p *Pool) executeJob(j jobModel.Job) {
	start := time.Now()
	ctx := logger_i.WithTraceID(context.Background(), j.TraceId)
	log := p.logger.WithTrace(ctx).With("jobId", j.Id, "jobType", j.JobType)
	log.Debug("Processing job")

	j.Status = jobModel.JobStatusRunning
	p.saveJobState(ctx, j, log)

	final := p.safeExecute(ctx, j, log)
	final.EndTime = time.Now()
	if final.Status != jobModel.JobStatusError {
		final.Status = jobModel.JobStatusComplete
		final.CurrentStep = jobModel.Complete
	}
	p.saveJobState(ctx, final, log)
	metrics.CaptureJobMetrics(string(final.Status), time.Since(start))
	log.Info("Job finished", "status", final.Status, "outcome", final.JobPayload.Outcome)
}

// safeExecute keeps a panicking job from taking its worker down.
func (p *Pool) safeExecute(ctx context.Context, j jobModel.Job, log *logger_i.Logger) (out jobModel.Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			out = failJob(j, http.StatusInternalServerError, fmt.Sprintf("internal error: %v", r), false)
		}
	}()
	return p.executor.Execute(ctx, j)
}

func (p *Pool) saveJobState(ctx context.Context, j jobModel.Job, log *logger_i.Logger) {
	if err := p.service.JobStore.SaveJob(ctx, j); err != nil {
		log.Error("Failed to update job state", "error", err)
	}
}

func failJob(j jobModel.Job, code int, message string, retry bool) jobModel.Job {
	j.Status = jobModel.JobStatusError
	j.CurrentStep = jobModel.Error
	j.Error = jobModel.JobError{Code: code, Message: message, Retry: retry}
	return j
}

type Triager interface {
	TriageWithProgress(ctx context.Context, doc commonModels.Document, onStep triage.StepFunc) (triage.Result, error)
}

// DocumentExecutor runs triage and regulation ingestion jobs for uploaded files.
type DocumentExecutor struct {
	triager       Triager
	chunker       *ingest.Chunker
	store         ingest.Upserter
	jobs          jobModel.JobStore
	reports       jobModel.ReportStore
	timeout       time.Duration
	removeUploads bool
	logger        *logger_i.Logger
}

func NewDocumentExecutor(triager Triager, chunker *ingest.Chunker, store ingest.Upserter,
	jobs jobModel.JobStore, reports jobModel.ReportStore, removeUploads bool) *DocumentExecutor {
	return &DocumentExecutor{
		triager:       triager,
		chunker:       chunker,
		store:         store,
		jobs:          jobs,
		reports:       reports,
		timeout:       config.JobTimeout,
		removeUploads: removeUploads,
		logger:        logger_i.NewLogger("Executor"),
	}
}

func (e *DocumentExecutor) Execute(ctx context.Context, j jobModel.Job) jobModel.Job {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if e.removeUploads && j.JobPayload.DocumentPath != "" {
		defer func() {
			if err := os.Remove(j.JobPayload.DocumentPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				e.logger.WithTrace(ctx).Warn("Could not remove upload", "path", j.JobPayload.DocumentPath, "error", err)
			}
		}()
	}

	if j.JobType == jobModel.JobTypeIngest {
		return e.ingest(ctx, j)
	}
	return e.triage(ctx, j)
}

func (e *DocumentExecutor) ingest(ctx context.Context, j jobModel.Job) jobModel.Job {
	log := e.logger.WithTrace(ctx).With("jobId", j.Id)
	j.CurrentStep = jobModel.IngestProcessing
	e.progress(ctx, j)

	n, err := ingest.IngestFile(ctx, j.JobPayload.DocumentPath, j.JobPayload.DocumentName, commonModels.CorpusRegulations, e.chunker, e.store)
	switch {
	case errors.Is(err, ingest.ErrNoContent):
		j.JobPayload.Outcome = jobModel.OutcomeNoContent
		return j
	case err != nil:
		log.Error("Ingestion failed", "error", err)
		return failJob(j, http.StatusBadGateway, err.Error(), true)
	}
	metrics.CaptureChunksUpserted(string(commonModels.CorpusRegulations), n)
	j.JobPayload.ChunksStored = n
	return j
}

func (e *DocumentExecutor) triage(ctx context.Context, j jobModel.Job) jobModel.Job {
	log := e.logger.WithTrace(ctx).With("jobId", j.Id)

	doc, err := ingest.LoadDocument(j.JobPayload.DocumentPath, j.JobPayload.DocumentName)
	if err != nil {
		log.Warn("Could not read upload", "error", err)
		return failJob(j, http.StatusUnprocessableEntity, err.Error(), false)
	}

	res, err := e.triager.TriageWithProgress(ctx, doc, func(step jobModel.InternalStatus) {
		j.CurrentStep = step
		e.progress(ctx, j)
	})
	j.JobPayload.Relevance = res.Relevance
	j.JobPayload.Outcome = res.Outcome
	j.JobPayload.ChunksStored = res.ChunksStored
	j.JobPayload.Gaps = res.Gaps
	j.JobPayload.Steps = res.Steps
	if err != nil {
		if res.Outcome == jobModel.OutcomeAnalysisFailed {
			return failJob(j, http.StatusBadGateway, res.Error, true)
		}
		return failJob(j, http.StatusServiceUnavailable, err.Error(), true)
	}

	if res.Report != "" {
		j.CurrentStep = jobModel.ReportStoreCall
		if err := e.reports.SaveReport(ctx, j.Id, res.Report); err != nil {
			log.Error("Could not store report", "error", err)
			return failJob(j, http.StatusInternalServerError, "report storage failed", true)
		}
		j.JobPayload.HasReport = true
	}
	return j
}

func (e *DocumentExecutor) progress(ctx context.Context, j jobModel.Job) {
	if err := e.jobs.SaveJob(ctx, j); err != nil {
		e.logger.WithTrace(ctx).Warn("Could not save job progress", "jobId", j.Id, "error", err)
	}
}
