package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"8c1f2a8e-5b7d-4c8e-9f0a-3e2d1c4b5a69"`
	JobType   string            `json:"job_type" example:"Triage"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Gap struct {
	Title     string `json:"title" example:"Overdue LDAR survey"`
	Citation  string `json:"citation" example:"SOR/2018-66 s.29"`
	Severity  string `json:"severity" example:"High"`
	Rationale string `json:"rationale"`
}

type TriageResponse struct {
	DocumentName string   `json:"document_name" example:"site_audit.pdf"`
	Relevance    string   `json:"relevance,omitempty" example:"Relevant"`
	Outcome      string   `json:"outcome,omitempty" example:"GAPS_FOUND"`
	ChunksStored int      `json:"chunks_stored" example:"12"`
	Gaps         []Gap    `json:"gaps,omitempty"`
	Steps        []string `json:"steps,omitempty"`
	ReportURL    string   `json:"report_url,omitempty" example:"report/8c1f2a8e-5b7d-4c8e-9f0a-3e2d1c4b5a69"`
}

type Result struct {
	Status      string          `json:"status" example:"COMPLETE"`
	CurrentStep string          `json:"current_step,omitempty" example:"Supervisor"`
	Triage      *TriageResponse `json:"triage,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
