package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/akolanti/ogtriage/internal/adapter/utils"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/internal/job"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

// JobHandler turns accepted uploads into queued jobs and serves their state.
type JobHandler struct {
	service   *job.Service
	uploadDir string
	logger    *logger_i.Logger
}

func NewJobHandler(jobService *job.Service, uploadDir string) (*JobHandler, error) {
	if err := os.MkdirAll(uploadDir, 0750); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	h := &JobHandler{
		service:   jobService,
		uploadDir: uploadDir,
		logger:    logger_i.NewLogger("JobHandler"),
	}
	h.logger.Info("Starting job handler", "uploadDir", uploadDir)
	return h, nil
}

func (h *JobHandler) createJob(ctx context.Context, jobType jobModel.JobType, documentName string, documentPath string) (jobModel.Job, error) {
	j := job.NewJob(utils.GetNewUUID(), logger_i.TraceID(ctx), jobType, documentName, documentPath)
	log := h.logger.WithTrace(ctx).With("jobId", j.Id, "jobType", jobType)

	if err := h.service.Enqueue(ctx, j); err != nil {
		log.Warn("Could not queue job", "error", err)
		return jobModel.Job{}, err
	}
	log.Info("Created new job", "document", documentName)
	return j, nil
}

func (h *JobHandler) getJob(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		h.logger.WithTrace(ctx).Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return h.service.GetJob(ctx, id)
}
