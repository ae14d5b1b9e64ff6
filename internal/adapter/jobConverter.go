package adapter

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/ogtriage/internal/api"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:      string(job.Status),
		CurrentStep: string(job.CurrentStep),
		Triage:      ToTriageResponse(job.Id, job.JobPayload),
	}

	return api.JobResponse{
		Id:        job.Id,
		JobType:   string(job.JobType),
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

// ToTriageResponse is nil until the job has produced something to show.
func ToTriageResponse(jobId string, payload jobModel.JobPayload) *api.TriageResponse {
	if payload.Outcome == "" && payload.Relevance == "" && payload.ChunksStored == 0 {
		return nil
	}

	gaps := make([]api.Gap, 0, len(payload.Gaps))
	for _, g := range payload.Gaps {
		gaps = append(gaps, api.Gap{
			Title:     g.Title,
			Citation:  g.Citation,
			Severity:  string(g.Severity),
			Rationale: g.Rationale,
		})
	}

	res := &api.TriageResponse{
		DocumentName: payload.DocumentName,
		Relevance:    string(payload.Relevance),
		Outcome:      string(payload.Outcome),
		ChunksStored: payload.ChunksStored,
		Gaps:         gaps,
		Steps:        payload.Steps,
	}
	if payload.HasReport {
		res.ReportURL = fmt.Sprintf("report/%s", jobId)
	}
	return res
}

// ReportFileName is the download name for a job's report, without the upload's extension.
func ReportFileName(documentName string) string {
	base := strings.TrimSuffix(filepath.Base(documentName), filepath.Ext(documentName))
	if base == "" || base == "." {
		base = "document"
	}
	return fmt.Sprintf("compliance_report_%s.txt", base)
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
