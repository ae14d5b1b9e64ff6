package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/ogtriage/internal/data/store"
	"github.com/akolanti/ogtriage/internal/domain/commonModels"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/internal/job"
	"github.com/akolanti/ogtriage/internal/rag/ingest"
	"github.com/akolanti/ogtriage/internal/triage"
)

// MockExecutor tracks executed jobs
type MockExecutor struct {
	ProcessedCount int32
	OnExecute      func(ctx context.Context, j jobModel.Job) jobModel.Job
}

func (m *MockExecutor) Execute(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	if m.OnExecute != nil {
		return m.OnExecute(ctx, j)
	}
	return j
}

type MockJobStore struct {
	mu        sync.Mutex
	saved     []jobModel.Job
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Id == jobId {
			return m.saved[i], true
		}
	}
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	m.mu.Lock()
	m.saved = append(m.saved, j)
	m.mu.Unlock()
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

func newJobService(js jobModel.JobStore) *job.Service {
	return job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore:          js,
		ReportStore:       store.InitInMemoryReportStore(),
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerPool_Flow(t *testing.T) {
	js := &MockJobStore{}
	jobSvc := newJobService(js)
	exec := &MockExecutor{}
	pool := NewPool(jobSvc, exec, WithLimits(1, 3), WithIdleTimeout(time.Minute))
	pool.Start()

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		jobSvc.DispatcherChannel <- true
		waitFor(t, func() bool { return pool.WorkerCount() == 2 })
	})

	t.Run("Dispatcher respects max workers", func(t *testing.T) {
		for range 5 {
			jobSvc.DispatcherChannel <- true
		}
		waitFor(t, func() bool { return len(jobSvc.DispatcherChannel) == 0 })
		time.Sleep(20 * time.Millisecond)
		if n := pool.WorkerCount(); n > 3 {
			t.Errorf("expected at most 3 workers, got %d", n)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "test-1"}
		waitFor(t, func() bool { return atomic.LoadInt32(&exec.ProcessedCount) == 1 })
		waitFor(t, func() bool {
			j, ok := js.GetJob(context.Background(), "test-1")
			return ok && j.Status == jobModel.JobStatusComplete
		})
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			pool.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
		if n := pool.WorkerCount(); n != 0 {
			t.Errorf("expected 0 workers after stop, got %d", n)
		}
	})
}

func TestWorker_IdleTimeout(t *testing.T) {
	jobSvc := newJobService(&MockJobStore{})
	pool := NewPool(jobSvc, &MockExecutor{}, WithLimits(1, 5), WithIdleTimeout(80*time.Millisecond))
	pool.Start()
	defer pool.Stop()

	jobSvc.DispatcherChannel <- true
	jobSvc.DispatcherChannel <- true
	waitFor(t, func() bool { return pool.WorkerCount() == 3 })

	// extra workers retire, the minimum stays
	waitFor(t, func() bool { return pool.WorkerCount() == 1 })
	time.Sleep(200 * time.Millisecond)
	if n := pool.WorkerCount(); n != 1 {
		t.Errorf("pool drained below its minimum: %d", n)
	}
}

func TestWorker_PanicMarksJobFailed(t *testing.T) {
	js := &MockJobStore{}
	jobSvc := newJobService(js)
	exec := &MockExecutor{OnExecute: func(ctx context.Context, j jobModel.Job) jobModel.Job {
		panic("boom")
	}}
	pool := NewPool(jobSvc, exec, WithLimits(1, 1))
	pool.Start()
	defer pool.Stop()

	jobSvc.JobChannel <- jobModel.Job{Id: "p1"}
	waitFor(t, func() bool {
		j, ok := js.GetJob(context.Background(), "p1")
		return ok && j.Status == jobModel.JobStatusError
	})
}

type stubTriager struct {
	res triage.Result
	err error
}

func (s stubTriager) TriageWithProgress(ctx context.Context, doc commonModels.Document, onStep triage.StepFunc) (triage.Result, error) {
	onStep(jobModel.ClassifyCall)
	return s.res, s.err
}

type countingUpserter struct{ n int }

func (c *countingUpserter) Upsert(ctx context.Context, chunks []commonModels.Chunk, corpus commonModels.CorpusTag) (int, error) {
	c.n += len(chunks)
	return len(chunks), nil
}

func writeUpload(t *testing.T, name string, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDocumentExecutor_Triage(t *testing.T) {
	chunker, _ := ingest.NewChunker(500, 200)
	js := &MockJobStore{}
	reports := store.InitInMemoryReportStore()

	tests := []struct {
		name       string
		triager    stubTriager
		wantStatus jobModel.JobStatus
		wantReport bool
		wantCode   int
	}{
		{
			name: "Gaps_Found_Stores_Report",
			triager: stubTriager{res: triage.Result{
				Relevance: commonModels.Relevant, Outcome: jobModel.OutcomeGapsFound, Report: "# report", ChunksStored: 2,
			}},
			wantStatus: jobModel.JobStatusRunning,
			wantReport: true,
		},
		{
			name:       "Not_Relevant",
			triager:    stubTriager{res: triage.Result{Relevance: commonModels.NotRelevant, Outcome: jobModel.OutcomeNotRelevant}},
			wantStatus: jobModel.JobStatusRunning,
		},
		{
			name: "Analysis_Failed",
			triager: stubTriager{
				res: triage.Result{Outcome: jobModel.OutcomeAnalysisFailed, Error: "gap_analyzer_agent: invalid severity"},
				err: errors.New("analysing: invalid severity"),
			},
			wantStatus: jobModel.JobStatusError,
			wantCode:   502,
		},
		{
			name:       "Classifier_Down",
			triager:    stubTriager{err: errors.New("quota")},
			wantStatus: jobModel.JobStatusError,
			wantCode:   503,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewDocumentExecutor(tt.triager, chunker, &countingUpserter{}, js, reports, false)
			path := writeUpload(t, "audit.txt", "venting report")
			in := job.NewJob(tt.name, "trace", jobModel.JobTypeTriage, "audit.txt", path)
			in.Status = jobModel.JobStatusRunning

			out := exec.Execute(context.Background(), in)
			if out.Status != tt.wantStatus {
				t.Fatalf("expected status %s, got %s (%+v)", tt.wantStatus, out.Status, out.Error)
			}
			if out.Error.Code != tt.wantCode {
				t.Errorf("expected error code %d, got %d", tt.wantCode, out.Error.Code)
			}
			_, stored := reports.GetReport(context.Background(), tt.name)
			if stored != tt.wantReport || out.JobPayload.HasReport != tt.wantReport {
				t.Errorf("report stored=%v hasReport=%v, want %v", stored, out.JobPayload.HasReport, tt.wantReport)
			}
			if _, ok := js.GetJob(context.Background(), tt.name); !ok {
				t.Error("expected progress to be saved")
			}
		})
	}
}

func TestDocumentExecutor_UnreadableUpload(t *testing.T) {
	chunker, _ := ingest.NewChunker(500, 200)
	exec := NewDocumentExecutor(stubTriager{}, chunker, &countingUpserter{}, &MockJobStore{}, store.InitInMemoryReportStore(), false)
	out := exec.Execute(context.Background(), job.NewJob("u", "", jobModel.JobTypeTriage, "x.exe", "/nope/x.exe"))
	if out.Status != jobModel.JobStatusError || out.Error.Code != 422 {
		t.Fatalf("expected 422 error, got %+v", out)
	}
}

func TestDocumentExecutor_Ingest(t *testing.T) {
	chunker, _ := ingest.NewChunker(500, 200)
	up := &countingUpserter{}
	exec := NewDocumentExecutor(stubTriager{}, chunker, up, &MockJobStore{}, store.InitInMemoryReportStore(), true)

	path := writeUpload(t, "directive.txt", "Operators must report flaring volumes monthly.")
	out := exec.Execute(context.Background(), job.NewJob("i", "", jobModel.JobTypeIngest, "directive.txt", path))
	if out.Status == jobModel.JobStatusError {
		t.Fatalf("unexpected failure: %+v", out.Error)
	}
	if out.JobPayload.ChunksStored != 1 || up.n != 1 {
		t.Errorf("expected 1 chunk, got payload=%d upserter=%d", out.JobPayload.ChunksStored, up.n)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected the upload to be removed")
	}
}
