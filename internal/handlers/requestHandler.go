package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/ogtriage/internal/adapter"
	"github.com/akolanti/ogtriage/internal/adapter/utils"
	"github.com/akolanti/ogtriage/internal/api"
	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/internal/job"
	"github.com/akolanti/ogtriage/internal/rag/ingest"
)

// HealthHandler godoc
// @Summary      Liveness probe
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// TriageHandler godoc
// @Summary      Triage a document
// @Description  Uploads a document, classifies it for Oil & Gas regulatory relevance and, when relevant, runs the gap analysis. Returns a job ID to poll.
// @Tags         Triage
// @Accept       multipart/form-data
// @Produce      json
// @Param        document       formData  file    true   "PDF, DOCX, ODT, RTF or TXT file"
// @Param        document_name  formData  string  false  "Display name, defaults to the uploaded file name"
// @Success      202  {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400  {object}  api.JobResponse      "Missing file, unsupported type or file too large"
// @Failure      503  {object}  api.JobResponse      "Job queue full"
// @Router       /triage [post]
func (h *JobHandler) TriageHandler(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, jobModel.JobTypeTriage)
}

// IngestHandler godoc
// @Summary      Upload a regulation for ingestion
// @Description  Receives a regulatory document and queues it for chunking and embedding into the regulations corpus.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document       formData  file    true   "PDF, DOCX, ODT, RTF or TXT file"
// @Param        document_name  formData  string  false  "Source name stored with every chunk, defaults to the uploaded file name"
// @Success      202  {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400  {object}  api.JobResponse      "Missing file, unsupported type or file too large"
// @Failure      503  {object}  api.JobResponse      "Job queue full"
// @Router       /ingest [post]
func (h *JobHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, jobModel.JobTypeIngest)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a job and, once available, its triage result.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse  "The current status of the job"
// @Failure      404  {object}  api.JobResponse  "Job not found"
// @Router       /status/{id} [get]
func (h *JobHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	result, isFound := h.getJob(r.Context(), id)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, id, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// GetReportHandler godoc
// @Summary      Download a triage report
// @Description  Returns the rendered compliance report of a finished triage job as a text download.
// @Tags         Triage
// @Produce      plain
// @Param        id   path      string  true  "Job ID"
// @Success      200  {string}  string           "Report text"
// @Failure      404  {object}  api.JobResponse  "Job or report not found"
// @Router       /report/{id} [get]
func (h *JobHandler) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	id := utils.GetChiURLParam(r, "id")
	j, isFound := h.getJob(r.Context(), id)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, id, "Job not found")
		return
	}
	report, ok := h.service.GetReport(r.Context(), id)
	if !ok {
		WriteErrorResponse(w, http.StatusNotFound, id, "Report not available")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", adapter.ReportFileName(j.JobPayload.DocumentName)))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, report); err != nil {
		h.logger.WithTrace(r.Context()).Error("Error writing report", "error", err)
	}
}

func (h *JobHandler) handleUpload(w http.ResponseWriter, r *http.Request, jobType jobModel.JobType) {
	if !h.validateContext(r) {
		return
	}
	log := h.logger.WithTrace(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	uploadName := filepath.Base(fileMetadata.Filename)
	if !ingest.SupportedType(uploadName) {
		WriteErrorResponse(w, http.StatusBadRequest, uploadName, "Unsupported document type")
		return
	}
	docName := strings.TrimSpace(r.FormValue("document_name"))
	if docName == "" {
		docName = uploadName
	}

	path, err := h.saveUpload(fileReader, uploadName)
	if err != nil {
		log.Error("Could not store upload", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}

	j, err := h.createJob(r.Context(), jobType, docName, path)
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, job.ErrQueueFull) {
			WriteErrorResponse(w, http.StatusServiceUnavailable, docName, "Job queue full, retry later")
			return
		}
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Could not create job")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(j.Id))
}

// saveUpload keeps the original extension so the loader can pick an extractor.
func (h *JobHandler) saveUpload(src io.Reader, uploadName string) (string, error) {
	filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), uploadName)
	path := filepath.Join(h.uploadDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
