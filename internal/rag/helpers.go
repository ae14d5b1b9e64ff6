package rag

import (
	"time"

	"github.com/akolanti/ogtriage/internal/metrics"
)

func timed(label string, fn func() error) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(label, time.Since(start)) }()
	return fn()
}
