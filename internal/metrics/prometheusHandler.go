package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ogtriage"

var (
	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Requests labelled by route pattern and status code.",
	}, []string{"path", "status"})

	jobsQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "jobs_queued",
		Help:      "Uploads waiting for a worker.",
	})

	dispatcherSignals = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatcher_signals_total",
		Help:      "Times the queue asked the pool for another worker.",
	})

	activeWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_workers",
		Help:      "Workers currently alive in the pool.",
	})

	triageOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "triage_outcomes_total",
		Help:      "Finished triage runs labelled by outcome.",
	}, []string{"outcome"})

	chunksUpserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chunks_upserted_total",
		Help:      "Chunks written to the vector store labelled by corpus.",
	}, []string{"corpus"})

	agentSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_steps_total",
		Help:      "Supervisor invocations labelled by agent and result.",
	}, []string{"agent", "result"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Wall time of a queued job from pickup to final status.",
		Buckets:   []float64{.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"status"})

	dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dependency_latency_seconds",
		Help:      "Latency of model, embedding, vector and search calls.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
	}, []string{"service"})
)

// HttpStatusRecorder remembers the status written through it.
type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streamable MCP responses working behind the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func IncrementJobsInQueue() { jobsQueued.Inc() }
func DecrementJobsInQueue() { jobsQueued.Dec() }

func StartDispatcherSignalCount() { dispatcherSignals.Inc() }

func IncrementActiveWorkerCount() { activeWorkers.Inc() }
func DecrementActiveWorkerCount() { activeWorkers.Dec() }

func CaptureTriageOutcome(outcome string) {
	triageOutcomes.WithLabelValues(outcome).Inc()
}

func CaptureChunksUpserted(corpus string, n int) {
	chunksUpserted.WithLabelValues(corpus).Add(float64(n))
}

func CaptureAgentStep(agent string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	agentSteps.WithLabelValues(agent, result).Inc()
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	jobDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
