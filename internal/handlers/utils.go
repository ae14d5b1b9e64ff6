package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akolanti/ogtriage/internal/adapter"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are gone, nothing left but to log
		logger_i.NewLogger("RequestHandler").Error("Error encoding response", "error", err)
	}
}

func (h *JobHandler) validateContext(r *http.Request) bool {
	if err := r.Context().Err(); err != nil {
		h.logger.WithTrace(r.Context()).Warn("context error", "error", err, "remote", r.RemoteAddr)
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}
