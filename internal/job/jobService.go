package job

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/internal/metrics"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

var ErrQueueFull = errors.New("job queue is full")

type Service struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	ReportStore       jobModel.ReportStore
	requestCount      atomic.Int64
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	ReportStore       jobModel.ReportStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		ReportStore:       cfg.ReportStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// NewJob builds a queued job for a stored upload.
func NewJob(id string, traceId string, jobType jobModel.JobType, documentName string, documentPath string) jobModel.Job {
	j := jobModel.Job{
		Id:          id,
		TraceId:     traceId,
		JobType:     jobType,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		JobPayload: jobModel.JobPayload{
			DocumentName: documentName,
			DocumentPath: documentPath,
		},
	}
	if jobType == jobModel.JobTypeIngest {
		j.CurrentStep = jobModel.IngestInit
	} else {
		j.CurrentStep = jobModel.TriageInit
	}
	return j
}

// Enqueue stores the job as queued and hands it to the workers. A full
// buffer is reported instead of blocking the request.
func (s *Service) Enqueue(ctx context.Context, j jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("jobId", j.Id, "jobType", j.JobType)
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		log.Error("Could not persist queued job", "error", err)
		return err
	}

	select {
	case s.JobChannel <- j:
	default:
		log.Warn("Job queue full")
		s.JobStore.DeleteJob(ctx, j.Id)
		return ErrQueueFull
	}
	metrics.IncrementJobsInQueue()
	log.Info("Job queued")

	// triage runs chain several model calls, so every triage job may get a
	// worker; plain ingestion only every RequestsPerNewWorkerCount requests
	count := s.requestCount.Add(1)
	if j.JobType == jobModel.JobTypeTriage || count%config.RequestsPerNewWorkerCount == 0 {
		s.signalDispatcher()
	}
	return nil
}

func (s *Service) signalDispatcher() {
	select {
	case s.DispatcherChannel <- true:
		metrics.StartDispatcherSignalCount()
	default:
		// a signal is already pending
	}
}

func (s *Service) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}

func (s *Service) GetReport(ctx context.Context, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	return s.ReportStore.GetReport(ctx, id)
}
