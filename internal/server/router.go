package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/akolanti/ogtriage/internal/handlers"
	"github.com/akolanti/ogtriage/internal/middleware"
)

type Routes struct {
	Jobs       *handlers.JobHandler
	MCP        http.Handler
	Middleware *middleware.Chain
}

// NewRouter mounts the API behind the middleware chain. Health, metrics and
// swagger stay open for probes and scrapers.
func NewRouter(rt Routes) *chi.Mux {
	r := chi.NewRouter()
	initSwagger(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", handlers.HealthHandler)

	wrap := rt.Middleware.Wrap
	r.Post("/triage", wrap(rt.Jobs.TriageHandler))
	r.Post("/ingest", wrap(rt.Jobs.IngestHandler))
	r.Get("/status/{id}", wrap(rt.Jobs.GetStatusHandler))
	r.Get("/report/{id}", wrap(rt.Jobs.GetReportHandler))
	if rt.MCP != nil {
		r.Handle("/mcp", rt.Middleware.WrapHandler(rt.MCP))
	}
	return r
}

func initSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
