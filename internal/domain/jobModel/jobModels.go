package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/ogtriage/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

type JobType string

type TriageOutcome string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	TriageInit      InternalStatus = "Init"
	ClassifyCall    InternalStatus = "Classify"
	IngestCall      InternalStatus = "Ingest"
	SupervisorCall  InternalStatus = "Supervisor"
	ReportStoreCall InternalStatus = "ReportStore"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeTriage JobType = "Triage"
	JobTypeIngest JobType = "Ingest"

	OutcomeNotRelevant    TriageOutcome = "NOT_RELEVANT"
	OutcomeNoContent      TriageOutcome = "NO_CONTENT"
	OutcomeNoGapsFound    TriageOutcome = "NO_GAPS_FOUND"
	OutcomeGapsFound      TriageOutcome = "GAPS_FOUND"
	OutcomeAnalysisFailed TriageOutcome = "ANALYSIS_FAILED"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	DocumentName string `json:"document_name,omitempty"`
	DocumentPath string `json:"document_path,omitempty"`

	Relevance    commonModels.Relevance       `json:"relevance,omitempty"`
	Outcome      TriageOutcome                `json:"outcome,omitempty"`
	ChunksStored int                          `json:"chunks_stored"`
	Gaps         []commonModels.ComplianceGap `json:"gaps,omitempty"`
	Steps        []string                     `json:"steps,omitempty"`
	HasReport    bool                         `json:"has_report"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// ReportStore keeps rendered reports for download, keyed by job id.
type ReportStore interface {
	SaveReport(ctx context.Context, jobId string, report string) error
	GetReport(ctx context.Context, jobId string) (string, bool)
}
