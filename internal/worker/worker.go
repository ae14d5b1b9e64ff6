package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/internal/job"
	"github.com/akolanti/ogtriage/internal/metrics"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

// Executor runs one job to completion and returns its final state.
type Executor interface {
	Execute(ctx context.Context, j jobModel.Job) jobModel.Job
}

// Pool is an elastic worker pool: the dispatcher adds workers on signal up to
// maxWorkers, and idle workers above minWorkers retire.
type Pool struct {
	service  *job.Service
	executor Executor

	minWorkers  int64
	maxWorkers  int64
	idleTimeout time.Duration

	workerCount atomic.Int64
	stop        chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
	logger      *logger_i.Logger
}

type Option func(*Pool)

func WithLimits(minWorkers int64, maxWorkers int64) Option {
	return func(p *Pool) {
		p.minWorkers = max(minWorkers, 1)
		p.maxWorkers = max(maxWorkers, p.minWorkers)
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(p *Pool) { p.idleTimeout = d }
}

func NewPool(service *job.Service, executor Executor, opts ...Option) *Pool {
	p := &Pool{
		service:     service,
		executor:    executor,
		minWorkers:  config.MinWorkerCount,
		maxWorkers:  config.MaxWorkerCount,
		idleTimeout: config.IdleWorkerTimeout,
		stop:        make(chan struct{}),
		logger:      logger_i.NewLogger("WorkerPool"),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool", "min", p.minWorkers, "max", p.maxWorkers)
	for range p.minWorkers {
		p.createWorker()
	}
	go p.dispatcher()
}

// Stop retires every worker after its current job and waits for them.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) WorkerCount() int64 {
	return p.workerCount.Load()
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.stop:
			return
		case <-p.service.DispatcherChannel:
			if p.workerCount.Load() < p.maxWorkers {
				p.logger.Debug("Creating new worker", "workerCount", p.workerCount.Load())
				p.createWorker()
			}
		}
	}
}

func (p *Pool) createWorker() {
	p.wg.Add(1)
	p.workerCount.Add(1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-p.service.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)
			idle.Reset(p.idleTimeout)

		case <-p.stop:
			p.workerCount.Add(-1)
			p.removeWorker("stop signal received")
			return

		case <-idle.C:
			if p.tryRetire() {
				p.removeWorker("idle timeout")
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

// tryRetire claims a slot above minWorkers so concurrent idle workers
// cannot drain the pool below it.
func (p *Pool) tryRetire() bool {
	for {
		n := p.workerCount.Load()
		if n <= p.minWorkers {
			return false
		}
		if p.workerCount.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// removeWorker expects the worker count to be decremented already.
func (p *Pool) removeWorker(reason string) {
	metrics.DecrementActiveWorkerCount()
	p.logger.Debug("Removed worker", "reason", reason, "workerCount", p.workerCount.Load())
	p.wg.Done()
}
