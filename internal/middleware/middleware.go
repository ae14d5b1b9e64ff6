package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/metrics"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type Options struct {
	AuthToken    string
	NoAuthBypass bool
	RateLimit    rate.Limit
	Burst        int
}

// Chain runs trace injection, bearer auth and the per-IP rate limit in front of a handler.
type Chain struct {
	opts    Options
	limiter *IPRateLimiter
}

func New(opts Options) *Chain {
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(config.RATE_LIMIT_PER_SECOND)
	}
	if opts.Burst <= 0 {
		opts.Burst = config.BURST_RATE_LIMIT_PER_SECOND
	}
	return &Chain{
		opts:    opts,
		limiter: NewIPRateLimiter(opts.RateLimit, opts.Burst),
	}
}

func (c *Chain) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := c.processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
		} else {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(routeLabel(r), strconv.Itoa(rec.Status)).Inc()
	}
}

// WrapHandler is Wrap for handlers that are not plain funcs, like the MCP endpoint.
func (c *Chain) WrapHandler(next http.Handler) http.Handler {
	return c.Wrap(next.ServeHTTP)
}

func (c *Chain) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	re = c.authenticate(re)
	if re.badRequest.isBadRequest {
		return re
	}
	return c.rateLimiter(re)
}

// route patterns keep status ids out of the metric labels
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
